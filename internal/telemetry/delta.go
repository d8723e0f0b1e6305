package telemetry

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// DeltaCurve computes the cumulative time difference of a target lap against
// a reference lap on the given distance grid.
//
// Each lap's timestamps are linearly interpolated over its derived distance
// at every grid point. Grid points outside a lap's observed distance range
// take the boundary value, so a lap with shorter coverage than the grid
// yields a flat tail rather than an error; that is a known artifact of the
// extrapolation, not something to correct silently.
//
// The curve has exactly len(grid) points and is shifted so the first grid
// point is zero.
func DeltaCurve(ref, target []Row, grid []float64) ([]float64, error) {
	refTimes, err := interpolateTimes(ref, grid)
	if err != nil {
		return nil, fmt.Errorf("reference lap: %w", err)
	}
	targetTimes, err := interpolateTimes(target, grid)
	if err != nil {
		return nil, fmt.Errorf("target lap: %w", err)
	}

	curve := make([]float64, len(grid))
	for i := range grid {
		curve[i] = (targetTimes[i] - refTimes[i]) / 1e9
	}
	base := curve[0]
	for i := range curve {
		curve[i] -= base
	}
	return curve, nil
}

// interpolateTimes evaluates a lap's timestamp (in nanoseconds, as float64)
// at each grid distance. Rows are sorted by distance and deduplicated first,
// which gives the piecewise-linear fit the strictly increasing xs it needs.
func interpolateTimes(rows []Row, grid []float64) ([]float64, error) {
	rows = SortByDistance(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no samples")
	}

	out := make([]float64, len(grid))
	if len(rows) == 1 {
		t := float64(rows[0].Timestamp)
		for i := range out {
			out[i] = t
		}
		return out, nil
	}

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i := range rows {
		xs[i] = rows[i].Dist
		ys[i] = float64(rows[i].Timestamp)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit lap timestamps: %w", err)
	}

	lo, hi := xs[0], xs[len(xs)-1]
	for i, d := range grid {
		// Clamp into the observed range: boundary-value extrapolation.
		if d < lo {
			d = lo
		} else if d > hi {
			d = hi
		}
		out[i] = pl.Predict(d)
	}
	return out, nil
}
