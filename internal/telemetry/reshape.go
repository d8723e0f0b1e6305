package telemetry

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawSample is one long-format record: one channel reading of one vehicle at
// one instant. Values stay raw strings until coercion so that duplicate
// resolution sees the data exactly as recorded.
type RawSample struct {
	Timestamp int64
	Lap       int32
	VehicleID string
	Channel   string
	Value     string
}

// RowKey identifies one wide row.
type RowKey struct {
	Timestamp int64
	Lap       int32
	VehicleID string
}

func (k RowKey) less(o RowKey) bool {
	if k.Timestamp != o.Timestamp {
		return k.Timestamp < o.Timestamp
	}
	if k.Lap != o.Lap {
		return k.Lap < o.Lap
	}
	return k.VehicleID < o.VehicleID
}

// RawFrame is the pivoted-but-uncoerced wide table: one row per key, one
// string column per channel.
type RawFrame struct {
	Keys  []RowKey
	Names []string
	Cols  map[string][]string
}

// NewRawFrame builds a RawFrame from pre-widened input (the pass-through
// case where the CSV already has one column per channel).
func NewRawFrame(keys []RowKey, names []string, cols map[string][]string) *RawFrame {
	return &RawFrame{Keys: keys, Names: names, Cols: cols}
}

// PivotLong reshapes long-format samples into a RawFrame with exactly one
// row per distinct (timestamp, lap, vehicle) key, sorted by key. When the
// same key carries duplicate readings for a channel, the first occurrence
// wins.
func PivotLong(samples []RawSample) *RawFrame {
	type cell struct {
		key     RowKey
		channel string
	}

	seenKeys := make(map[RowKey]bool)
	var keys []RowKey
	cells := make(map[cell]string)
	seenChannels := make(map[string]bool)
	var names []string

	for _, s := range samples {
		k := RowKey{Timestamp: s.Timestamp, Lap: s.Lap, VehicleID: s.VehicleID}
		if !seenKeys[k] {
			seenKeys[k] = true
			keys = append(keys, k)
		}
		if !seenChannels[s.Channel] {
			seenChannels[s.Channel] = true
			names = append(names, s.Channel)
		}
		c := cell{key: k, channel: s.Channel}
		if _, dup := cells[c]; !dup {
			cells[c] = s.Value
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	cols := make(map[string][]string, len(names))
	for _, name := range names {
		col := make([]string, len(keys))
		for i, k := range keys {
			col[i] = cells[cell{key: k, channel: name}]
		}
		cols[name] = col
	}

	return &RawFrame{Keys: keys, Names: names, Cols: cols}
}

// Normalize renames every column through the channel rule table. When two
// raw columns collapse onto the same canonical name the first keeps the
// slot and later ones are discarded.
func (f *RawFrame) Normalize() {
	renamed := make(map[string][]string, len(f.Cols))
	var names []string
	for _, name := range f.Names {
		canon := NormalizeChannel(name)
		if _, taken := renamed[canon]; taken {
			continue
		}
		renamed[canon] = f.Cols[name]
		names = append(names, canon)
	}
	f.Names = names
	f.Cols = renamed
}

// Frame is the numeric wide table. Unparseable or missing values are NaN
// until Fill runs.
type Frame struct {
	Keys  []RowKey
	Names []string
	Cols  map[string][]float64
}

// Coerce converts every column to numeric. Values that do not parse become
// NaN; this never errors.
func (f *RawFrame) Coerce() *Frame {
	cols := make(map[string][]float64, len(f.Cols))
	for name, raw := range f.Cols {
		col := make([]float64, len(raw))
		for i, s := range raw {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				v = math.NaN()
			}
			col[i] = v
		}
		cols[name] = col
	}
	return &Frame{Keys: f.Keys, Names: f.Names, Cols: cols}
}

// Fill replaces NaN holes per column by propagating the nearest earlier
// value, then the nearest later value. The fill runs over the whole dataset,
// not per lap, so values can leak across lap and vehicle boundaries at table
// edges. That boundary behavior is intentional and pinned by tests.
func (f *Frame) Fill() {
	for _, col := range f.Cols {
		last := math.NaN()
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = last
			} else {
				last = v
			}
		}
		next := math.NaN()
		for i := len(col) - 1; i >= 0; i-- {
			if math.IsNaN(col[i]) {
				col[i] = next
			} else {
				next = col[i]
			}
		}
	}
}

// BuildTable projects the frame into canonical rows. Channel presence is
// recorded for every column the source carried, canonical or not; only
// canonical channels are materialised as row fields, since nothing
// downstream consumes unrecognised sensors.
func (f *Frame) BuildTable() *Table {
	t := &Table{
		Rows:     make([]Row, len(f.Keys)),
		Channels: make(map[string]bool, len(f.Names)),
	}
	for _, name := range f.Names {
		t.Channels[name] = true
	}

	nan := math.NaN()
	for i, k := range f.Keys {
		r := Row{
			Timestamp: k.Timestamp,
			Lap:       k.Lap,
			VehicleID: k.VehicleID,
			Dist:      nan,
			MapX:      nan,
			MapY:      nan,
		}
		for _, c := range canonicalChannels {
			col, ok := f.Cols[c]
			if ok {
				setChannelValue(&r, c, col[i])
			} else {
				setChannelValue(&r, c, nan)
			}
		}
		t.Rows[i] = r
	}
	return t
}
