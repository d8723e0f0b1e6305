// Package units provides shared physical constants and speed conversions
// for the telemetry pipeline.
package units

// Gravity is standard gravity in m/s², used to convert lateral
// acceleration samples (recorded in g) to m/s².
const Gravity = 9.81

// KmhToMs converts a speed in km/h to m/s.
// Sensor speed channels are recorded in km/h; the physics derivation
// integrates in SI units.
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// MsToKmh converts a speed in m/s to km/h.
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}
