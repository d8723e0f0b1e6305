package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "analyses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAnalysisAssignsID(t *testing.T) {
	d := testDB(t)

	id, err := d.RecordAnalysis(Analysis{
		VehicleID:        "car9",
		RefLap:           3,
		TargetLap:        2,
		GapSeconds:       2.677,
		CriticalDistance: 3120,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := d.ListAnalyses(10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, id, a.ID)
	assert.Equal(t, "car9", a.VehicleID)
	assert.Equal(t, int32(3), a.RefLap)
	assert.Equal(t, int32(2), a.TargetLap)
	assert.Equal(t, 2.677, a.GapSeconds)
	assert.Equal(t, 3120.0, a.CriticalDistance)
	assert.NotEmpty(t, a.Timestamp)
}

func TestRecordAnalysisKeepsProvidedID(t *testing.T) {
	d := testDB(t)

	id, err := d.RecordAnalysis(Analysis{ID: "fixed-id", VehicleID: "car9"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestListAnalysesLimit(t *testing.T) {
	d := testDB(t)

	for i := 0; i < 5; i++ {
		_, err := d.RecordAnalysis(Analysis{VehicleID: "car9", RefLap: int32(i)})
		require.NoError(t, err)
	}

	got, err := d.ListAnalyses(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListAnalysesEmpty(t *testing.T) {
	d := testDB(t)

	got, err := d.ListAnalyses(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
