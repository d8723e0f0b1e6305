package telemetry

import "testing"

func TestNormalizeChannel(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"vDASH_SPEED_KPH", ChanSpeed},
		{"PBRAKE_F_BAR", ChanBrakeFront},
		{"PBRAKE_R_BAR", ChanBrakeRear},
		{"ATH_PERCENT", ChanThrottle},
		{"ACCX_CHASSIS", ChanAccLong},
		{"accy_chassis", ChanAccLat},
		{"Steering_Angle", ChanSteer},
		{"NMOT_ENGINE", ChanRPM},
		{"GEAR_SELECTED", ChanGear},
		{"DIST_LAP_M", ChanDistSensor},
		{"oil_temp", "oil_temp"}, // no rule, passes through
	}

	for _, c := range cases {
		if got := NormalizeChannel(c.raw); got != c.want {
			t.Errorf("NormalizeChannel(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

// A name matching several rules resolves to the earliest rule, so a speed
// channel that also mentions distance still lands on speed.
func TestNormalizeChannelRuleOrder(t *testing.T) {
	if got := NormalizeChannel("SPEED_OVER_DIST"); got != ChanSpeed {
		t.Errorf("NormalizeChannel(SPEED_OVER_DIST) = %q, want %q", got, ChanSpeed)
	}
}
