package telemetry

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Insight is the crew-chief report for one lap comparison: the signed total
// gap plus the grid distance where the target lap bleeds time fastest.
type Insight struct {
	RefSeconds    float64 `json:"ref_seconds"`
	TargetSeconds float64 `json:"target_seconds"`
	GapSeconds    float64 `json:"gap_seconds"`
	Gap           string  `json:"gap"`
	TimeLost      bool    `json:"time_lost"`

	CriticalIndex    int     `json:"critical_index"`
	CriticalDistance float64 `json:"critical_distance"`
	Message          string  `json:"message"`
}

// FormatGap renders a signed lap-time gap as the dashboard shows it,
// e.g. "+2.677s". A positive gap means the target lap lost time.
func FormatGap(gap float64) string {
	return fmt.Sprintf("%+.3fs", gap)
}

// Gradient computes the discrete gradient of a curve with unit spacing:
// central differences inside, one-sided at the edges. Curves shorter than
// two points return a zero slice of the same length.
func Gradient(curve []float64) []float64 {
	n := len(curve)
	grad := make([]float64, n)
	if n < 2 {
		return grad
	}
	grad[0] = curve[1] - curve[0]
	for i := 1; i < n-1; i++ {
		grad[i] = (curve[i+1] - curve[i-1]) / 2
	}
	grad[n-1] = curve[n-1] - curve[n-2]
	return grad
}

// CriticalLoss finds the grid index of the delta curve's steepest time loss,
// ignoring edgeInset points at each end where the gradient is an edge
// artifact. When the curve is too short for the inset the whole range is
// searched.
func CriticalLoss(curve []float64, edgeInset int) int {
	grad := Gradient(curve)
	lo, hi := edgeInset, len(grad)-edgeInset
	if lo >= hi {
		lo, hi = 0, len(grad)
	}
	if hi <= lo {
		return 0
	}
	return lo + floats.MaxIdx(grad[lo:hi])
}

// BuildInsight assembles the report for one comparison.
func BuildInsight(refTime, targetTime LapTime, curve, grid []float64, edgeInset int) Insight {
	gap := targetTime.Seconds - refTime.Seconds

	idx := CriticalLoss(curve, edgeInset)
	dist := 0.0
	if idx < len(grid) {
		dist = grid[idx]
	}

	return Insight{
		RefSeconds:       refTime.Seconds,
		TargetSeconds:    targetTime.Seconds,
		GapSeconds:       gap,
		Gap:              FormatGap(gap),
		TimeLost:         gap > 0,
		CriticalIndex:    idx,
		CriticalDistance: dist,
		Message:          fmt.Sprintf("critical loss at %.0f meters: the target lap deviates hardest from the reference speed profile in this sector", dist),
	}
}
