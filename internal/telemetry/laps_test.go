package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lapRow(ts int64, lap int32, vehicle string) Row {
	return Row{Timestamp: ts, Lap: lap, VehicleID: vehicle}
}

func TestVehiclesFirstAppearanceOrder(t *testing.T) {
	table := &Table{Rows: []Row{
		lapRow(300, 1, "car22"),
		lapRow(100, 1, "car9"),
		lapRow(200, 1, "car22"),
	}}

	want := []string{"car22", "car9"}
	if diff := cmp.Diff(want, table.Vehicles()); diff != "" {
		t.Errorf("vehicles mismatch (-want +got):\n%s", diff)
	}
}

func TestLapTimes(t *testing.T) {
	rows := []Row{
		lapRow(10e9, 1, "car9"),
		lapRow(105e9, 1, "car9"),
		lapRow(105e9, 2, "car9"),
		lapRow(195e9, 2, "car9"),
	}

	want := []LapTime{
		{Lap: 1, Seconds: 95},
		{Lap: 2, Seconds: 90},
	}
	if diff := cmp.Diff(want, LapTimes(rows)); diff != "" {
		t.Errorf("lap times mismatch (-want +got):\n%s", diff)
	}
}

func TestValidLapsFastestFirst(t *testing.T) {
	times := []LapTime{
		{Lap: 1, Seconds: 310}, // out lap, excluded
		{Lap: 2, Seconds: 97.8},
		{Lap: 3, Seconds: 95.1},
		{Lap: 4, Seconds: 30}, // aborted lap, excluded
	}

	got := ValidLaps(times, 60, 180)

	want := []LapTime{
		{Lap: 3, Seconds: 95.1},
		{Lap: 2, Seconds: 97.8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("valid laps mismatch (-want +got):\n%s", diff)
	}
}

func TestValidLapsBoundsAreStrict(t *testing.T) {
	times := []LapTime{{Lap: 1, Seconds: 60}, {Lap: 2, Seconds: 180}}
	got := ValidLaps(times, 60, 180)
	// Nothing qualifies, so the fallback returns everything in lap order.
	if diff := cmp.Diff(times, got); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestValidLapsFallbackWhenNoneQualify(t *testing.T) {
	times := []LapTime{
		{Lap: 1, Seconds: 300},
		{Lap: 2, Seconds: 400},
	}

	got := ValidLaps(times, 60, 180)
	if diff := cmp.Diff(times, got); diff != "" {
		t.Errorf("fallback should keep all laps in lap order (-want +got):\n%s", diff)
	}
}

func TestLapRowsSortedByTimestamp(t *testing.T) {
	table := &Table{Rows: []Row{
		lapRow(300, 1, "car9"),
		lapRow(100, 1, "car9"),
		lapRow(200, 2, "car9"),
		lapRow(150, 1, "car22"),
	}}

	got := table.LapRows("car9", 1)

	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Timestamp != 100 || got[1].Timestamp != 300 {
		t.Errorf("rows not sorted: %v", got)
	}
}

func TestSortByDistanceDeduplicates(t *testing.T) {
	rows := []Row{
		{Timestamp: 300, Dist: 20},
		{Timestamp: 100, Dist: 10},
		{Timestamp: 200, Dist: 10}, // duplicate distance, later sample
	}

	got := SortByDistance(rows)

	if len(got) != 2 {
		t.Fatalf("expected 2 rows after dedupe, got %d", len(got))
	}
	if got[0].Dist != 10 || got[1].Dist != 20 {
		t.Errorf("not sorted by distance: %v", got)
	}
	if got[0].Timestamp != 100 {
		t.Errorf("dedupe kept timestamp %d, want first sample 100", got[0].Timestamp)
	}
}

func TestSortByDistanceDoesNotMutateInput(t *testing.T) {
	rows := []Row{
		{Timestamp: 1, Dist: 30},
		{Timestamp: 2, Dist: 10},
	}
	SortByDistance(rows)
	if rows[0].Dist != 30 {
		t.Error("input slice was reordered")
	}
}
