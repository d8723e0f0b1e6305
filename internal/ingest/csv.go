// Package ingest reads session telemetry CSVs into the wide-table pipeline.
//
// The source file must carry timestamp, lap and vehicle_id columns plus
// either a long-format (telemetry_name, telemetry_value) pair or one
// pre-widened column per sensor channel.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apexline-data/laptime.report/internal/monitoring"
	"github.com/apexline-data/laptime.report/internal/telemetry"
)

// key column names, matched case-insensitively.
const (
	colTimestamp = "timestamp"
	colLap       = "lap"
	colVehicle   = "vehicle_id"
	colChanName  = "telemetry_name"
	colChanValue = "telemetry_value"
)

// Data is a parsed CSV in whichever shape the file came in. Exactly one of
// Samples (long format) or Keys/Names/Cols (pre-widened) is populated.
type Data struct {
	Long    bool
	Samples []telemetry.RawSample

	Keys  []telemetry.RowKey
	Names []string
	Cols  map[string][]string
}

// Frame pivots (or passes through) the parsed data into a raw wide frame.
func (d *Data) Frame() *telemetry.RawFrame {
	if d.Long {
		return telemetry.PivotLong(d.Samples)
	}
	return telemetry.NewRawFrame(d.Keys, d.Names, d.Cols)
}

// ReadCSV parses the session telemetry file.
func ReadCSV(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	tsIdx, ok := cols[colTimestamp]
	if !ok {
		return nil, fmt.Errorf("csv is missing a %q column", colTimestamp)
	}
	lapIdx, ok := cols[colLap]
	if !ok {
		return nil, fmt.Errorf("csv is missing a %q column", colLap)
	}
	vehIdx, ok := cols[colVehicle]
	if !ok {
		return nil, fmt.Errorf("csv is missing a %q column", colVehicle)
	}

	nameIdx, hasName := cols[colChanName]
	valueIdx, hasValue := cols[colChanValue]
	if hasName && hasValue {
		return readLong(r, tsIdx, lapIdx, vehIdx, nameIdx, valueIdx)
	}
	return readWide(r, header, tsIdx, lapIdx, vehIdx)
}

func readLong(r *csv.Reader, tsIdx, lapIdx, vehIdx, nameIdx, valueIdx int) (*Data, error) {
	d := &Data{Long: true}
	skipped := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		if len(rec) <= maxIdx(tsIdx, lapIdx, vehIdx, nameIdx, valueIdx) {
			skipped++
			continue
		}
		d.Samples = append(d.Samples, telemetry.RawSample{
			Timestamp: ParseTimestamp(rec[tsIdx]),
			Lap:       parseLap(rec[lapIdx]),
			VehicleID: strings.TrimSpace(rec[vehIdx]),
			Channel:   strings.TrimSpace(rec[nameIdx]),
			Value:     rec[valueIdx],
		})
	}
	if skipped > 0 {
		monitoring.Logf("skipped %d short csv records", skipped)
	}
	return d, nil
}

func readWide(r *csv.Reader, header []string, tsIdx, lapIdx, vehIdx int) (*Data, error) {
	keyIdx := map[int]bool{tsIdx: true, lapIdx: true, vehIdx: true}

	d := &Data{Cols: make(map[string][]string)}
	for i, name := range header {
		if keyIdx[i] {
			continue
		}
		d.Names = append(d.Names, strings.TrimSpace(name))
	}

	skipped := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		if len(rec) != len(header) {
			skipped++
			continue
		}
		d.Keys = append(d.Keys, telemetry.RowKey{
			Timestamp: ParseTimestamp(rec[tsIdx]),
			Lap:       parseLap(rec[lapIdx]),
			VehicleID: strings.TrimSpace(rec[vehIdx]),
		})
		col := 0
		for i := range header {
			if keyIdx[i] {
				continue
			}
			name := d.Names[col]
			d.Cols[name] = append(d.Cols[name], rec[i])
			col++
		}
	}
	if skipped > 0 {
		monitoring.Logf("skipped %d malformed csv records", skipped)
	}
	return d, nil
}

// timestampLayouts are tried in order for non-numeric timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses a timestamp cell into Unix nanoseconds. Numeric
// values are interpreted by magnitude (seconds, milliseconds, microseconds
// or nanoseconds since the epoch); otherwise the known layouts are tried.
// Unparseable values coerce to zero rather than erroring, matching the
// lenient coercion the rest of the pipeline applies to malformed cells.
func ParseTimestamp(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		abs := math.Abs(v)
		switch {
		case abs >= 1e17: // already nanoseconds
			return int64(v)
		case abs >= 1e14: // microseconds
			return int64(v * 1e3)
		case abs >= 1e11: // milliseconds
			return int64(v * 1e6)
		default: // seconds
			return int64(v * 1e9)
		}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixNano()
		}
	}
	return 0
}

func parseLap(s string) int32 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int32(v)
}

func maxIdx(idx ...int) int {
	max := idx[0]
	for _, i := range idx[1:] {
		if i > max {
			max = i
		}
	}
	return max
}
