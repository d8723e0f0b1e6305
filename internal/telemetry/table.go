package telemetry

import "math"

// Row is one wide sample: one timestamp of one lap of one vehicle, with one
// numeric field per canonical channel plus the derived fields. Channels the
// source never recorded hold NaN. The parquet tags define the cache snapshot
// schema.
type Row struct {
	Timestamp int64  `parquet:"name=timestamp, type=INT64"`
	Lap       int32  `parquet:"name=lap, type=INT32"`
	VehicleID string `parquet:"name=vehicle_id, type=BYTE_ARRAY, convertedtype=UTF8"`

	Speed      float64 `parquet:"name=speed, type=DOUBLE"`
	Throttle   float64 `parquet:"name=throttle, type=DOUBLE"`
	BrakeFront float64 `parquet:"name=brake_front, type=DOUBLE"`
	BrakeRear  float64 `parquet:"name=brake_rear, type=DOUBLE"`
	AccLong    float64 `parquet:"name=acc_long, type=DOUBLE"`
	AccLat     float64 `parquet:"name=acc_lat, type=DOUBLE"`
	Steer      float64 `parquet:"name=steer, type=DOUBLE"`
	RPM        float64 `parquet:"name=rpm, type=DOUBLE"`
	Gear       float64 `parquet:"name=gear, type=DOUBLE"`
	DistSensor float64 `parquet:"name=dist_sensor, type=DOUBLE"`

	// Derived by the physics pass.
	Dist float64 `parquet:"name=dist, type=DOUBLE"`
	MapX float64 `parquet:"name=map_x, type=DOUBLE"`
	MapY float64 `parquet:"name=map_y, type=DOUBLE"`
}

// Table is the prepared wide table: validated laps only, derived fields
// populated. It is immutable once built; every downstream consumer filters
// and sorts copies.
type Table struct {
	Rows []Row

	// Channels records which channel columns were present in the source
	// data (post-normalization). Derivations and charts that need an
	// optional channel check here and skip silently when absent.
	Channels map[string]bool

	// HasPath reports whether the synthetic track path was computed
	// (requires both acc_lat and speed channels).
	HasPath bool
}

// canonicalChannels lists every channel materialised as a Row field, in
// cache schema order.
var canonicalChannels = []string{
	ChanSpeed, ChanThrottle, ChanBrakeFront, ChanBrakeRear,
	ChanAccLong, ChanAccLat, ChanSteer, ChanRPM, ChanGear, ChanDistSensor,
}

// channelValue returns the named canonical channel of a row.
func channelValue(r *Row, channel string) float64 {
	switch channel {
	case ChanSpeed:
		return r.Speed
	case ChanThrottle:
		return r.Throttle
	case ChanBrakeFront:
		return r.BrakeFront
	case ChanBrakeRear:
		return r.BrakeRear
	case ChanAccLong:
		return r.AccLong
	case ChanAccLat:
		return r.AccLat
	case ChanSteer:
		return r.Steer
	case ChanRPM:
		return r.RPM
	case ChanGear:
		return r.Gear
	case ChanDistSensor:
		return r.DistSensor
	}
	return math.NaN()
}

// setChannelValue assigns the named canonical channel of a row.
func setChannelValue(r *Row, channel string, v float64) {
	switch channel {
	case ChanSpeed:
		r.Speed = v
	case ChanThrottle:
		r.Throttle = v
	case ChanBrakeFront:
		r.BrakeFront = v
	case ChanBrakeRear:
		r.BrakeRear = v
	case ChanAccLong:
		r.AccLong = v
	case ChanAccLat:
		r.AccLat = v
	case ChanSteer:
		r.Steer = v
	case ChanRPM:
		r.RPM = v
	case ChanGear:
		r.Gear = v
	case ChanDistSensor:
		r.DistSensor = v
	}
}

// RestoreChannels rebuilds the channel presence set after a cache reload,
// where only the row data survives. A canonical channel counts as present
// when any row holds a real value for it; a column that was absent (or never
// produced a numeric sample) is NaN throughout and behaves identically
// either way.
func (t *Table) RestoreChannels() {
	t.Channels = make(map[string]bool)
	for _, c := range canonicalChannels {
		for i := range t.Rows {
			if !math.IsNaN(channelValue(&t.Rows[i], c)) {
				t.Channels[c] = true
				break
			}
		}
	}
	t.HasPath = false
	for i := range t.Rows {
		if !math.IsNaN(t.Rows[i].MapX) {
			t.HasPath = true
			break
		}
	}
}
