package telemetry

import "strings"

// Canonical channel names produced by the normalizer.
const (
	ChanSpeed      = "speed"
	ChanThrottle   = "throttle"
	ChanBrakeFront = "brake_front"
	ChanBrakeRear  = "brake_rear"
	ChanAccLong    = "acc_long"
	ChanAccLat     = "acc_lat"
	ChanSteer      = "steer"
	ChanRPM        = "rpm"
	ChanGear       = "gear"
	ChanDistSensor = "dist_sensor"
)

// ChannelRule maps a lowercase substring of a raw sensor channel name to its
// canonical name.
type ChannelRule struct {
	Substring string
	Canonical string
}

// ChannelRules is the ordered normalization rule table. Matching is
// case-insensitive substring, first match wins. Rule order is significant:
// overlapping substrings (e.g. "dist" inside a hypothetical
// "disturbance" channel) resolve to whichever rule appears first, so the
// order must not be rearranged.
var ChannelRules = []ChannelRule{
	{"speed", ChanSpeed},
	{"ath", ChanThrottle},
	{"pbrake_f", ChanBrakeFront},
	{"pbrake_r", ChanBrakeRear},
	{"accx", ChanAccLong},
	{"accy", ChanAccLat},
	{"steering", ChanSteer},
	{"nmot", ChanRPM},
	{"gear", ChanGear},
	{"dist", ChanDistSensor},
}

// NormalizeChannel maps a raw sensor channel name to its canonical name.
// Unmatched names pass through unchanged.
func NormalizeChannel(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range ChannelRules {
		if strings.Contains(lower, rule.Substring) {
			return rule.Canonical
		}
	}
	return name
}
