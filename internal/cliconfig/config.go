package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/trafficd/internal/control"
	"github.com/bft-labs/trafficd/internal/domain"
	"github.com/bft-labs/trafficd/internal/timer"
)

// Color modes for console output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds CLI configuration for trafficd.
type Config struct {
	Green    time.Duration
	Yellow   time.Duration
	AllRed   time.Duration
	PedCross time.Duration
	InitHold time.Duration
	Blink    time.Duration

	AlternateEW bool
	SafeStop    bool

	PollInterval time.Duration
	Timer        string

	Color       string
	LogLevel    string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	t := domain.DefaultTimings()
	return Config{
		Green:        t.Green,
		Yellow:       t.Yellow,
		AllRed:       t.AllRed,
		PedCross:     t.PedCross,
		InitHold:     t.InitHold,
		Blink:        t.Blink,
		PollInterval: control.DefaultPollInterval,
		Timer:        string(timer.KindAuto),
		Color:        ColorAuto,
		LogLevel:     zerolog.LevelInfoValue,
	}
}

// Timings returns the phase timings carried by the configuration.
func (c Config) Timings() domain.Timings {
	return domain.Timings{
		Green:       c.Green,
		Yellow:      c.Yellow,
		AllRed:      c.AllRed,
		PedCross:    c.PedCross,
		InitHold:    c.InitHold,
		Blink:       c.Blink,
		AlternateEW: c.AlternateEW,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Timings().Validate(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if _, err := timer.ParseKind(c.Timer); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", domain.ErrInvalidConfig, c.Color)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
