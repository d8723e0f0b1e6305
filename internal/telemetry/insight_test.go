package telemetry

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatGap(t *testing.T) {
	cases := []struct {
		gap  float64
		want string
	}{
		{2.677, "+2.677s"},
		{-0.412, "-0.412s"},
		{0, "+0.000s"},
	}
	for _, c := range cases {
		if got := FormatGap(c.gap); got != c.want {
			t.Errorf("FormatGap(%g) = %q, want %q", c.gap, got, c.want)
		}
	}
}

func TestGradient(t *testing.T) {
	curve := []float64{0, 1, 4, 9, 16}
	want := []float64{1, 2, 4, 6, 7}
	if diff := cmp.Diff(want, Gradient(curve)); diff != "" {
		t.Errorf("gradient mismatch (-want +got):\n%s", diff)
	}
}

func TestGradientDegenerate(t *testing.T) {
	if got := Gradient(nil); len(got) != 0 {
		t.Errorf("Gradient(nil) length = %d, want 0", len(got))
	}
	if got := Gradient([]float64{5}); len(got) != 1 || got[0] != 0 {
		t.Errorf("Gradient of one point = %v, want [0]", got)
	}
}

func TestCriticalLossIgnoresEdges(t *testing.T) {
	// 520-point curve: a huge jump right at the start (edge artifact) and a
	// smaller genuine loss ramp at index 200.
	curve := make([]float64, 520)
	curve[1] = 100 // steep edge step
	for i := 2; i < len(curve); i++ {
		curve[i] = curve[i-1]
		if i >= 200 && i < 210 {
			curve[i] += 0.5
		}
	}

	idx := CriticalLoss(curve, 50)
	if idx < 200 || idx > 210 {
		t.Errorf("critical index = %d, want the ramp near 200, not the edge", idx)
	}
}

func TestCriticalLossInsetTooLargeSearchesWholeCurve(t *testing.T) {
	curve := []float64{0, 0, 5, 5}
	idx := CriticalLoss(curve, 10)
	// The central-difference gradient peaks first at index 1.
	if idx != 1 {
		t.Errorf("critical index = %d, want 1", idx)
	}
}

func TestBuildInsight(t *testing.T) {
	grid := testGrid()
	curve := make([]float64, len(grid))
	for i := 100; i < len(curve); i++ {
		curve[i] = curve[i-1]
		if i >= 300 && i < 320 {
			curve[i] += 0.1
		}
	}

	ref := LapTime{Lap: 3, Seconds: 95.123}
	target := LapTime{Lap: 2, Seconds: 97.800}

	ins := BuildInsight(ref, target, curve, grid, 50)

	if math.Abs(ins.GapSeconds-2.677) > 1e-9 {
		t.Errorf("GapSeconds = %g, want 2.677", ins.GapSeconds)
	}
	if ins.Gap != "+2.677s" {
		t.Errorf("Gap = %q, want +2.677s", ins.Gap)
	}
	if !ins.TimeLost {
		t.Error("TimeLost should be true for a slower target")
	}
	if ins.CriticalIndex < 300 || ins.CriticalIndex > 320 {
		t.Errorf("CriticalIndex = %d, want within the ramp", ins.CriticalIndex)
	}
	if ins.CriticalDistance != grid[ins.CriticalIndex] {
		t.Errorf("CriticalDistance = %g, want grid value %g", ins.CriticalDistance, grid[ins.CriticalIndex])
	}
	if !strings.Contains(ins.Message, "meters") {
		t.Errorf("message missing distance: %q", ins.Message)
	}
}

func TestBuildInsightFasterTarget(t *testing.T) {
	grid := testGrid()
	curve := make([]float64, len(grid))

	ins := BuildInsight(LapTime{Seconds: 97.8}, LapTime{Seconds: 95.1}, curve, grid, 50)

	if ins.TimeLost {
		t.Error("TimeLost should be false for a faster target")
	}
	if ins.Gap != "-2.700s" {
		t.Errorf("Gap = %q, want -2.700s", ins.Gap)
	}
}
