package models

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Settings holds all user-tunable analysis parameters. The core receives
// it as a plain value object; persistence lives behind SettingsStore.
type Settings struct {
	// Histogram
	MinimalStep        float64 `yaml:"minimal_step" json:"minimal_step" default:"0.5" validate:"gt=0"`
	NumLevels          int     `yaml:"num_levels" json:"num_levels" validate:"gte=0,lte=1000"` // 0 = adaptive
	MinLevels          int     `yaml:"min_levels" json:"min_levels" default:"50" validate:"gt=0"`
	MaxLevels          int     `yaml:"max_levels" json:"max_levels" default:"200" validate:"gt=0"`
	NoiseFloorFraction float64 `yaml:"noise_floor_fraction" json:"noise_floor_fraction" default:"0.001" validate:"gte=0,lt=1"`

	// Value area
	ValueAreaFraction float64 `yaml:"value_area_fraction" json:"value_area_fraction" default:"0.7" validate:"gt=0,lte=1"`

	// Proximity thresholds (relative to current price)
	POCDistance       float64 `yaml:"poc_distance" json:"poc_distance" default:"0.002" validate:"gt=0"`
	ValueAreaDistance float64 `yaml:"value_area_distance" json:"value_area_distance" default:"0.0015" validate:"gt=0"`
	LevelDistance     float64 `yaml:"level_distance" json:"level_distance" default:"0.001" validate:"gt=0"`

	// Directional signals
	StopOffset float64 `yaml:"stop_offset" json:"stop_offset" default:"0.005" validate:"gt=0,lt=1"`

	// Indicators
	EMAFastPeriod   int `yaml:"ema_fast_period" json:"ema_fast_period" default:"12" validate:"gt=1"`
	SMAMediumPeriod int `yaml:"sma_medium_period" json:"sma_medium_period" default:"50" validate:"gt=1"`
	SMASlowPeriod   int `yaml:"sma_slow_period" json:"sma_slow_period" default:"200" validate:"gt=1"`

	// Fusion
	AlertCooldown time.Duration `yaml:"alert_cooldown" json:"alert_cooldown" default:"5m" validate:"gt=0"`
	HistoryLimit  int           `yaml:"history_limit" json:"history_limit" default:"100" validate:"gt=0"`

	// Series
	SeriesCapacity int `yaml:"series_capacity" json:"series_capacity" default:"200" validate:"gt=0"`
}

var settingsValidate = validator.New()

// DefaultSettings returns a Settings populated with defaults.
func DefaultSettings() Settings {
	var s Settings
	_ = defaults.Set(&s)
	return s
}

// Normalize fills zero values with defaults and validates the result.
func (s *Settings) Normalize() error {
	if err := defaults.Set(s); err != nil {
		return fmt.Errorf("settings defaults: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks parameter ranges and cross-field consistency.
func (s *Settings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if s.MinLevels > s.MaxLevels {
		return fmt.Errorf("settings: min_levels %d > max_levels %d", s.MinLevels, s.MaxLevels)
	}
	if s.EMAFastPeriod >= s.SMAMediumPeriod {
		return fmt.Errorf("settings: ema_fast_period %d must be below sma_medium_period %d", s.EMAFastPeriod, s.SMAMediumPeriod)
	}
	if s.SMAMediumPeriod >= s.SMASlowPeriod {
		return fmt.Errorf("settings: sma_medium_period %d must be below sma_slow_period %d", s.SMAMediumPeriod, s.SMASlowPeriod)
	}
	return nil
}

// Hash returns a stable digest of all parameters, used as part of the
// memoization cache key.
func (s Settings) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v", s)
	return h.Sum64()
}
