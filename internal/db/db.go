// Package db stores the analysis log: one row per computed lap comparison.
package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (and if needed initialises) the analysis log at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			analysis_id        TEXT PRIMARY KEY,
			vehicle_id         TEXT,
			ref_lap            BIGINT,
			target_lap         BIGINT,
			gap_seconds        DOUBLE,
			critical_distance  DOUBLE,
			timestamp          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Analysis is one recorded lap comparison.
type Analysis struct {
	ID               string  `json:"analysis_id"`
	VehicleID        string  `json:"vehicle_id"`
	RefLap           int32   `json:"ref_lap"`
	TargetLap        int32   `json:"target_lap"`
	GapSeconds       float64 `json:"gap_seconds"`
	CriticalDistance float64 `json:"critical_distance"`
	Timestamp        string  `json:"timestamp"`
}

// RecordAnalysis inserts a comparison into the log, assigning an id when the
// caller left it empty, and returns the id.
func (db *DB) RecordAnalysis(a Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	_, err := db.Exec(
		`INSERT INTO analyses (
			analysis_id, vehicle_id, ref_lap, target_lap, gap_seconds, critical_distance
		) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.VehicleID, a.RefLap, a.TargetLap, a.GapSeconds, a.CriticalDistance,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record analysis: %w", err)
	}
	return a.ID, nil
}

// ListAnalyses returns the most recent comparisons, newest first.
func (db *DB) ListAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(
		`SELECT analysis_id, vehicle_id, ref_lap, target_lap, gap_seconds, critical_distance, timestamp
		 FROM analyses ORDER BY timestamp DESC, analysis_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.VehicleID, &a.RefLap, &a.TargetLap,
			&a.GapSeconds, &a.CriticalDistance, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
