package ingest

import (
	"fmt"

	"github.com/apexline-data/laptime.report/internal/monitoring"
	"github.com/apexline-data/laptime.report/internal/telemetry"
)

// LoadTable runs the full preparation pipeline over a session CSV: parse,
// pivot to wide format, normalize channel names, coerce to numeric, fill
// gaps, derive per-lap physics and drop implausible laps.
//
// The returned table may be empty when no lap survives validation; deciding
// whether that is fatal is the caller's call.
func LoadTable(path string, p telemetry.DeriveParams) (*telemetry.Table, error) {
	data, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}

	frame := data.Frame()
	frame.Normalize()
	numeric := frame.Coerce()
	numeric.Fill()

	wide := numeric.BuildTable()
	monitoring.Logf("pivoted %d wide rows across %d channels", len(wide.Rows), len(wide.Channels))

	derived := telemetry.DeriveLaps(wide, p)
	monitoring.Logf("derived physics: %d rows in valid laps (of %d)", len(derived.Rows), len(wide.Rows))

	if len(derived.Rows) == 0 && len(wide.Rows) > 0 {
		monitoring.Logf("no lap passed the (%g, %g) distance validation", p.MinLapDistance, p.MaxLapDistance)
	}
	return derived, nil
}

// LoadTableOrCache loads the prepared table from the cache snapshot when it
// exists, otherwise derives it from the CSV and writes the snapshot through
// the provided cache hooks. It fails only when neither source is usable.
func LoadTableOrCache(csvPath string, p telemetry.DeriveParams,
	readCache func() (*telemetry.Table, error),
	writeCache func(*telemetry.Table) error,
) (*telemetry.Table, error) {
	if readCache != nil {
		if t, err := readCache(); err == nil {
			monitoring.Logf("loaded %d rows from cache snapshot", len(t.Rows))
			return t, nil
		}
	}

	t, err := LoadTable(csvPath, p)
	if err != nil {
		return nil, fmt.Errorf("no cache snapshot and csv load failed: %w", err)
	}
	if writeCache != nil && len(t.Rows) > 0 {
		if err := writeCache(t); err != nil {
			// Cache write failure is not fatal; next run pays the
			// derivation again.
			monitoring.Logf("failed to write cache snapshot: %v", err)
		}
	}
	return t, nil
}
