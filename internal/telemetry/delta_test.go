package telemetry

import (
	"math"
	"testing"
)

// timedLap builds rows every 100 m out to maxDist, with the timestamp a
// linear function of distance: pace seconds per meter.
func timedLap(maxDist, pace float64) []Row {
	var rows []Row
	for d := 0.0; d <= maxDist; d += 100 {
		rows = append(rows, Row{
			Timestamp: int64(d * pace * 1e9),
			Dist:      d,
		})
	}
	return rows
}

func testGrid() []float64 {
	grid := make([]float64, 520)
	for i := range grid {
		grid[i] = float64(i) * 10
	}
	return grid
}

func TestDeltaCurveIdenticalLapsIsZero(t *testing.T) {
	lap := timedLap(5200, 0.05)
	grid := testGrid()

	curve, err := DeltaCurve(lap, lap, grid)
	if err != nil {
		t.Fatalf("DeltaCurve: %v", err)
	}

	if len(curve) != len(grid) {
		t.Fatalf("curve length = %d, want %d", len(curve), len(grid))
	}
	for i, v := range curve {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("curve[%d] = %g, want 0 for identical laps", i, v)
		}
	}
}

func TestDeltaCurveSlowerTargetGrowsLinearly(t *testing.T) {
	ref := timedLap(5200, 0.050)
	target := timedLap(5200, 0.055) // 10% slower everywhere
	grid := testGrid()

	curve, err := DeltaCurve(ref, target, grid)
	if err != nil {
		t.Fatalf("DeltaCurve: %v", err)
	}

	if curve[0] != 0 {
		t.Errorf("curve[0] = %g, want 0 after baseline shift", curve[0])
	}
	for i := 1; i < len(curve); i++ {
		want := grid[i] * 0.005
		if math.Abs(curve[i]-want) > 1e-6 {
			t.Fatalf("curve[%d] = %g, want %g", i, curve[i], want)
		}
		if curve[i] <= curve[i-1] {
			t.Fatalf("delta not increasing at %d for a uniformly slower lap", i)
		}
	}
}

// Grid points past a lap's last sample take the boundary timestamp, so a
// lap with short coverage produces a flat tail instead of an error.
func TestDeltaCurveShortCoverageFlatTail(t *testing.T) {
	ref := timedLap(2600, 0.050)
	target := timedLap(2600, 0.055)
	grid := testGrid()

	curve, err := DeltaCurve(ref, target, grid)
	if err != nil {
		t.Fatalf("DeltaCurve: %v", err)
	}

	// Beyond 2600 m both laps hold their final timestamps.
	tail := curve[261]
	for i := 262; i < len(curve); i++ {
		if curve[i] != tail {
			t.Fatalf("curve[%d] = %g, want flat tail %g", i, curve[i], tail)
		}
	}
}

func TestDeltaCurveEmptyLap(t *testing.T) {
	if _, err := DeltaCurve(nil, timedLap(5200, 0.05), testGrid()); err == nil {
		t.Error("expected error for empty reference lap")
	}
	if _, err := DeltaCurve(timedLap(5200, 0.05), nil, testGrid()); err == nil {
		t.Error("expected error for empty target lap")
	}
}

func TestDeltaCurveSingleSampleLap(t *testing.T) {
	ref := timedLap(5200, 0.05)
	target := []Row{{Timestamp: 42e9, Dist: 100}}

	curve, err := DeltaCurve(ref, target, testGrid())
	if err != nil {
		t.Fatalf("DeltaCurve: %v", err)
	}
	if len(curve) != 520 {
		t.Fatalf("curve length = %d, want 520", len(curve))
	}
}

func TestDeltaCurveDuplicateDistances(t *testing.T) {
	ref := timedLap(5200, 0.05)
	// Duplicate distance samples must not break the interpolation fit.
	target := append(timedLap(5200, 0.055), Row{Timestamp: 0, Dist: 0})

	if _, err := DeltaCurve(ref, target, testGrid()); err != nil {
		t.Fatalf("DeltaCurve with duplicate distances: %v", err)
	}
}
