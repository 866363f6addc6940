package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "TRAFFICD_"

// ApplyEnvConfig applies configuration from environment variables (TRAFFICD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return os.Getenv(EnvPrefix + key) }

	if err := s.setDuration("green", env("GREEN"), &cfg.Green); err != nil {
		return err
	}
	if err := s.setDuration("yellow", env("YELLOW"), &cfg.Yellow); err != nil {
		return err
	}
	if err := s.setDuration("all-red", env("ALL_RED"), &cfg.AllRed); err != nil {
		return err
	}
	if err := s.setDuration("ped-cross", env("PED_CROSS"), &cfg.PedCross); err != nil {
		return err
	}
	if err := s.setDuration("init-hold", env("INIT_HOLD"), &cfg.InitHold); err != nil {
		return err
	}
	if err := s.setDuration("blink", env("BLINK"), &cfg.Blink); err != nil {
		return err
	}
	if err := s.setDuration("poll-interval", env("POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}

	s.setString("timer", env("TIMER"), &cfg.Timer)
	s.setString("color", env("COLOR"), &cfg.Color)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setBoolFromString("alternate-ew", env("ALTERNATE_EW"), &cfg.AlternateEW); err != nil {
		return err
	}
	if err := s.setBoolFromString("safe-stop", env("SAFE_STOP"), &cfg.SafeStop); err != nil {
		return err
	}
	if err := s.setBoolFromString("watch-config", env("WATCH_CONFIG"), &cfg.WatchConfig); err != nil {
		return err
	}

	return nil
}
