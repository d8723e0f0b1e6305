package telemetry

import "sort"

// LapTime is one lap's wall-clock duration.
type LapTime struct {
	Lap     int32   `json:"lap"`
	Seconds float64 `json:"seconds"`
}

// Vehicles returns the distinct vehicle ids in order of first appearance.
func (t *Table) Vehicles() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range t.Rows {
		v := t.Rows[i].VehicleID
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// VehicleRows returns the rows of one vehicle, in table order.
func (t *Table) VehicleRows(vehicle string) []Row {
	var out []Row
	for i := range t.Rows {
		if t.Rows[i].VehicleID == vehicle {
			out = append(out, t.Rows[i])
		}
	}
	return out
}

// LapTimes computes each lap's duration (max minus min timestamp) over the
// given rows, sorted by lap id.
func LapTimes(rows []Row) []LapTime {
	type span struct{ min, max int64 }
	spans := make(map[int32]*span)
	for i := range rows {
		ts := rows[i].Timestamp
		s, ok := spans[rows[i].Lap]
		if !ok {
			spans[rows[i].Lap] = &span{min: ts, max: ts}
			continue
		}
		if ts < s.min {
			s.min = ts
		}
		if ts > s.max {
			s.max = ts
		}
	}

	out := make([]LapTime, 0, len(spans))
	for lap, s := range spans {
		out = append(out, LapTime{Lap: lap, Seconds: float64(s.max-s.min) / 1e9})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lap < out[j].Lap })
	return out
}

// ValidLaps filters lap times to plausible racing laps (duration strictly
// between minSeconds and maxSeconds) sorted fastest first. When nothing
// qualifies it falls back to all laps in lap-id order, so the selectors are
// never empty for vehicles with data.
func ValidLaps(times []LapTime, minSeconds, maxSeconds float64) []LapTime {
	var out []LapTime
	for _, lt := range times {
		if lt.Seconds > minSeconds && lt.Seconds < maxSeconds {
			out = append(out, lt)
		}
	}
	if len(out) == 0 {
		return append([]LapTime(nil), times...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seconds < out[j].Seconds })
	return out
}

// LapRows returns one lap's rows for a vehicle, sorted by timestamp.
func (t *Table) LapRows(vehicle string, lap int32) []Row {
	var out []Row
	for i := range t.Rows {
		if t.Rows[i].VehicleID == vehicle && t.Rows[i].Lap == lap {
			out = append(out, t.Rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// SortByDistance returns the rows sorted by derived distance with duplicate
// distance values removed (first sample wins). This is the preparation step
// shared by the distance-indexed charts and the delta engine; it removes the
// zig-zag noise duplicate samples cause.
func SortByDistance(rows []Row) []Row {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Dist < sorted[j].Dist })

	out := sorted[:0]
	for i := range sorted {
		if i > 0 && sorted[i].Dist == out[len(out)-1].Dist {
			continue
		}
		out = append(out, sorted[i])
	}
	return out
}
