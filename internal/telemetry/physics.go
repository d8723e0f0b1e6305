package telemetry

import (
	"math"
	"sort"

	"github.com/apexline-data/laptime.report/internal/units"
)

// DeriveParams carries the track constants the physics pass depends on.
type DeriveParams struct {
	// Laps whose maximum derived distance falls outside the open interval
	// (MinLapDistance, MaxLapDistance) are dropped.
	MinLapDistance float64
	MaxLapDistance float64

	// SpeedFloorKmh is substituted for exactly-zero speed readings before
	// the yaw-rate division, guarding the path reconstruction against
	// division by zero.
	SpeedFloorKmh float64
}

type lapKey struct {
	vehicle string
	lap     int32
}

// DeriveLaps runs the per-lap physics pass over a wide table and returns a
// new table holding only validated laps.
//
// Per (vehicle, lap) group, rows sorted by timestamp:
//   - inter-sample time deltas (first row's delta is zero)
//   - cumulative distance, integrated from speed with the left-rectangle
//     rule when the dataset has no distance sensor, copied from the sensor
//     otherwise
//   - a dead-reckoned 2D path from lateral acceleration and speed, when
//     both channels exist; drift accumulates and is accepted, the path is
//     for visualization only
//
// Laps failing the distance validation are silently dropped, not reported.
func DeriveLaps(t *Table, p DeriveParams) *Table {
	groups := make(map[lapKey][]int)
	var order []lapKey
	for i := range t.Rows {
		k := lapKey{vehicle: t.Rows[i].VehicleID, lap: t.Rows[i].Lap}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].vehicle != order[j].vehicle {
			return order[i].vehicle < order[j].vehicle
		}
		return order[i].lap < order[j].lap
	})

	hasDistSensor := t.Channels[ChanDistSensor]
	hasSpeed := t.Channels[ChanSpeed]
	hasPath := t.Channels[ChanAccLat] && hasSpeed

	out := &Table{
		Channels: t.Channels,
		HasPath:  hasPath,
	}

	for _, k := range order {
		idx := groups[k]
		rows := make([]Row, len(idx))
		for i, j := range idx {
			rows[i] = t.Rows[j]
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Timestamp < rows[j].Timestamp
		})

		deriveLap(rows, p, hasDistSensor, hasSpeed, hasPath)

		if maxDist := lapMaxDistance(rows); maxDist > p.MinLapDistance && maxDist < p.MaxLapDistance {
			out.Rows = append(out.Rows, rows...)
		}
	}

	return out
}

// deriveLap fills the derived fields of one lap's rows in place.
func deriveLap(rows []Row, p DeriveParams, hasDistSensor, hasSpeed, hasPath bool) {
	dist := 0.0
	heading := 0.0
	x, y := 0.0, 0.0

	for i := range rows {
		dt := 0.0
		if i > 0 {
			dt = float64(rows[i].Timestamp-rows[i-1].Timestamp) / 1e9
		}

		if hasDistSensor {
			rows[i].Dist = rows[i].DistSensor
		} else {
			spd := 0.0
			if hasSpeed {
				spd = rows[i].Speed
			}
			dist += units.KmhToMs(spd) * dt
			rows[i].Dist = dist
		}

		if hasPath {
			spdKmh := rows[i].Speed
			if spdKmh == 0 {
				spdKmh = p.SpeedFloorKmh
			}
			spdMs := units.KmhToMs(spdKmh)
			yawRate := rows[i].AccLat * units.Gravity / spdMs
			heading += yawRate * dt
			x += spdMs * math.Cos(heading) * dt
			y += spdMs * math.Sin(heading) * dt
			rows[i].MapX = x
			rows[i].MapY = y
		}
	}
}

// lapMaxDistance returns the lap's maximum derived distance. Any NaN poisons
// the result so the lap fails validation.
func lapMaxDistance(rows []Row) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	max := math.Inf(-1)
	for i := range rows {
		d := rows[i].Dist
		if math.IsNaN(d) {
			return math.NaN()
		}
		if d > max {
			max = d
		}
	}
	return max
}
