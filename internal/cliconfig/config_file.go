package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/trafficd/internal/domain"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Timings      FileTimings `toml:"timings"`
	PollInterval string      `toml:"poll_interval"`
	Timer        string      `toml:"timer"`
	SafeStop     *bool       `toml:"safe_stop"`
	Color        string      `toml:"color"`
	LogLevel     string      `toml:"log_level"`
	WatchConfig  *bool       `toml:"watch_config"`
}

// FileTimings is the [timings] table. It is the only part of the file that
// can be reloaded while the intersection runs.
type FileTimings struct {
	Green       string `toml:"green"`
	Yellow      string `toml:"yellow"`
	AllRed      string `toml:"all_red"`
	PedCross    string `toml:"ped_cross"`
	InitHold    string `toml:"init_hold"`
	Blink       string `toml:"blink"`
	AlternateEW *bool  `toml:"alternate_ew"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.trafficd/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".trafficd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	t := cfg.Timings()
	if err := ApplyFileTimings(&t, fc.Timings, changed); err != nil {
		return err
	}
	cfg.Green, cfg.Yellow, cfg.AllRed = t.Green, t.Yellow, t.AllRed
	cfg.PedCross, cfg.InitHold, cfg.Blink = t.PedCross, t.InitHold, t.Blink
	cfg.AlternateEW = t.AlternateEW

	if err := s.setDuration("poll-interval", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}

	s.setString("timer", fc.Timer, &cfg.Timer)
	s.setString("color", fc.Color, &cfg.Color)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setBool("safe-stop", fc.SafeStop, &cfg.SafeStop)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// ApplyFileTimings applies the [timings] table to t. Keys whose flag was set
// on the command line are left alone.
func ApplyFileTimings(t *domain.Timings, ft FileTimings, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("green", ft.Green, &t.Green); err != nil {
		return err
	}
	if err := s.setDuration("yellow", ft.Yellow, &t.Yellow); err != nil {
		return err
	}
	if err := s.setDuration("all-red", ft.AllRed, &t.AllRed); err != nil {
		return err
	}
	if err := s.setDuration("ped-cross", ft.PedCross, &t.PedCross); err != nil {
		return err
	}
	if err := s.setDuration("init-hold", ft.InitHold, &t.InitHold); err != nil {
		return err
	}
	if err := s.setDuration("blink", ft.Blink, &t.Blink); err != nil {
		return err
	}
	s.setBool("alternate-ew", ft.AlternateEW, &t.AlternateEW)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
