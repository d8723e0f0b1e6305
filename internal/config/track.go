package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical track defaults file.
// This is the single source of truth for all default track values.
const DefaultConfigPath = "config/track.defaults.json"

// TrackConfig holds the circuit-specific constants the pipeline depends on.
// All fields are optional pointers so a partial JSON file only overrides what
// it names; the Get* methods supply defaults for the rest. Defaults describe
// VIR (~5.2 km).
type TrackConfig struct {
	// Lap validation bounds: a lap is kept only if its maximum derived
	// distance is strictly inside (min, max).
	MinLapDistance *float64 `json:"min_lap_distance,omitempty"`
	MaxLapDistance *float64 `json:"max_lap_distance,omitempty"`

	// Delta grid: distance points 0..span (exclusive) with the given step.
	GridSpan *float64 `json:"grid_span,omitempty"`
	GridStep *float64 `json:"grid_step,omitempty"`

	// Speed floor in km/h substituted for zero speed before the yaw-rate
	// division in the path reconstruction.
	SpeedFloorKmh *float64 `json:"speed_floor_kmh,omitempty"`

	// Plausible single-lap duration bounds in seconds for the lap selectors.
	MinLapSeconds *float64 `json:"min_lap_seconds,omitempty"`
	MaxLapSeconds *float64 `json:"max_lap_seconds,omitempty"`

	// Inset (grid points) excluded from each end of the delta curve when
	// searching for the critical-loss gradient peak.
	InsightEdgeInset *int `json:"insight_edge_inset,omitempty"`

	// Track display name for chart titles.
	TrackName *string `json:"track_name,omitempty"`
}

// EmptyTrackConfig returns a TrackConfig with all fields unset.
// The Get* methods then return defaults for every value.
func EmptyTrackConfig() *TrackConfig {
	return &TrackConfig{}
}

// LoadTrackConfig loads a TrackConfig from a JSON file. The file must have a
// .json extension and be under the max file size. Fields omitted from the
// JSON retain their defaults, so partial configs are safe.
func LoadTrackConfig(path string) (*TrackConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrackConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are consistent.
func (c *TrackConfig) Validate() error {
	min := c.GetMinLapDistance()
	max := c.GetMaxLapDistance()
	if min >= max {
		return fmt.Errorf("min_lap_distance (%g) must be below max_lap_distance (%g)", min, max)
	}

	if c.GetGridStep() <= 0 {
		return fmt.Errorf("grid_step must be positive, got %g", c.GetGridStep())
	}
	if c.GetGridSpan() <= 0 {
		return fmt.Errorf("grid_span must be positive, got %g", c.GetGridSpan())
	}

	if c.GetSpeedFloorKmh() <= 0 {
		return fmt.Errorf("speed_floor_kmh must be positive, got %g", c.GetSpeedFloorKmh())
	}

	if c.GetMinLapSeconds() >= c.GetMaxLapSeconds() {
		return fmt.Errorf("min_lap_seconds (%g) must be below max_lap_seconds (%g)",
			c.GetMinLapSeconds(), c.GetMaxLapSeconds())
	}

	if c.InsightEdgeInset != nil && *c.InsightEdgeInset < 0 {
		return fmt.Errorf("insight_edge_inset must be non-negative, got %d", *c.InsightEdgeInset)
	}

	return nil
}

// GetMinLapDistance returns the min_lap_distance value or the default.
func (c *TrackConfig) GetMinLapDistance() float64 {
	if c.MinLapDistance == nil {
		return 4000
	}
	return *c.MinLapDistance
}

// GetMaxLapDistance returns the max_lap_distance value or the default.
func (c *TrackConfig) GetMaxLapDistance() float64 {
	if c.MaxLapDistance == nil {
		return 7000
	}
	return *c.MaxLapDistance
}

// GetGridSpan returns the grid_span value or the default.
func (c *TrackConfig) GetGridSpan() float64 {
	if c.GridSpan == nil {
		return 5200
	}
	return *c.GridSpan
}

// GetGridStep returns the grid_step value or the default.
func (c *TrackConfig) GetGridStep() float64 {
	if c.GridStep == nil {
		return 10
	}
	return *c.GridStep
}

// GetSpeedFloorKmh returns the speed_floor_kmh value or the default.
func (c *TrackConfig) GetSpeedFloorKmh() float64 {
	if c.SpeedFloorKmh == nil {
		return 0.1
	}
	return *c.SpeedFloorKmh
}

// GetMinLapSeconds returns the min_lap_seconds value or the default.
func (c *TrackConfig) GetMinLapSeconds() float64 {
	if c.MinLapSeconds == nil {
		return 60
	}
	return *c.MinLapSeconds
}

// GetMaxLapSeconds returns the max_lap_seconds value or the default.
func (c *TrackConfig) GetMaxLapSeconds() float64 {
	if c.MaxLapSeconds == nil {
		return 180
	}
	return *c.MaxLapSeconds
}

// GetInsightEdgeInset returns the insight_edge_inset value or the default.
func (c *TrackConfig) GetInsightEdgeInset() int {
	if c.InsightEdgeInset == nil {
		return 50
	}
	return *c.InsightEdgeInset
}

// GetTrackName returns the track_name value or the default.
func (c *TrackConfig) GetTrackName() string {
	if c.TrackName == nil {
		return "VIR"
	}
	return *c.TrackName
}

// Grid materialises the delta distance grid: 0..span (exclusive) by step.
func (c *TrackConfig) Grid() []float64 {
	span := c.GetGridSpan()
	step := c.GetGridStep()
	n := int(span / step)
	grid := make([]float64, 0, n)
	for d := 0.0; d < span; d += step {
		grid = append(grid, d)
	}
	return grid
}
