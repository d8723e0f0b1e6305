// Package cache persists the derived wide table as a parquet snapshot.
//
// The snapshot short-circuits CSV parsing and physics derivation on warm
// starts: it is written once after the first successful load and read back
// on every start after that. The schema is whatever the wide row carries at
// write time, derived fields included.
package cache

import (
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/apexline-data/laptime.report/internal/telemetry"
)

// parallelism for the parquet marshal/unmarshal workers.
const parquetConcurrency = 4

// Exists reports whether a snapshot is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteTable writes the table's rows to a parquet snapshot at path. A
// partially written file is removed on failure so a broken snapshot never
// masks the CSV on the next run.
func WriteTable(path string, t *telemetry.Table) (err error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create cache snapshot: %w", err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close cache snapshot: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	pw, err := writer.NewParquetWriter(fw, new(telemetry.Row), parquetConcurrency)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	for i := range t.Rows {
		if err := pw.Write(t.Rows[i]); err != nil {
			return fmt.Errorf("write cache row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize cache snapshot: %w", err)
	}
	return nil
}

// ReadTable loads a snapshot back into a table. Channel presence and the
// path flag are reconstructed from the row data.
func ReadTable(path string) (*telemetry.Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open cache snapshot: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(telemetry.Row), parquetConcurrency)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]telemetry.Row, int(pr.GetNumRows()))
	if len(rows) > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read cache rows: %w", err)
		}
	}

	t := &telemetry.Table{Rows: rows}
	t.RestoreChannels()
	return t, nil
}
