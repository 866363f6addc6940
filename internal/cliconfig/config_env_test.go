package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"TRAFFICD_GREEN":         "10s",
				"TRAFFICD_YELLOW":        "3s",
				"TRAFFICD_ALL_RED":       "2s",
				"TRAFFICD_PED_CROSS":     "12s",
				"TRAFFICD_INIT_HOLD":     "0s",
				"TRAFFICD_BLINK":         "500ms",
				"TRAFFICD_POLL_INTERVAL": "50ms",
				"TRAFFICD_TIMER":         "runtime",
				"TRAFFICD_COLOR":         "never",
				"TRAFFICD_LOG_LEVEL":     "debug",
				"TRAFFICD_ALTERNATE_EW":  "true",
				"TRAFFICD_SAFE_STOP":     "1",
				"TRAFFICD_WATCH_CONFIG":  "true",
			},
			changed: map[string]bool{},
			initial: Config{InitHold: time.Second},
			expected: Config{
				Green:        10 * time.Second,
				Yellow:       3 * time.Second,
				AllRed:       2 * time.Second,
				PedCross:     12 * time.Second,
				InitHold:     0,
				Blink:        500 * time.Millisecond,
				PollInterval: 50 * time.Millisecond,
				Timer:        "runtime",
				Color:        "never",
				LogLevel:     "debug",
				AlternateEW:  true,
				SafeStop:     true,
				WatchConfig:  true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"TRAFFICD_GREEN": "30s",
				"TRAFFICD_TIMER": "os",
			},
			changed:  map[string]bool{"green": true, "timer": true},
			initial:  Config{Green: 7 * time.Second, Timer: "runtime"},
			expected: Config{Green: 7 * time.Second, Timer: "runtime"},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"TRAFFICD_SAFE_STOP": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{SafeStop: true},
			expected: Config{SafeStop: false},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"TRAFFICD_PED_CROSS": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid bool",
			envVars: map[string]string{
				"TRAFFICD_ALTERNATE_EW": "maybe",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		Timings: FileTimings{
			Green:    "20s",
			Yellow:   "4s",
			PedCross: "15s",
		},
		SafeStop: &trueVal,
	}

	t.Setenv("TRAFFICD_GREEN", "9s")
	t.Setenv("TRAFFICD_YELLOW", "3s")

	// Simulate CLI flags
	changed := map[string]bool{
		"green": true,
	}

	cfg := DefaultConfig()
	cfg.Green = 6 * time.Second

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Green != 6*time.Second {
		t.Errorf("Green = %v, want 6s (CLI should win)", cfg.Green)
	}
	if cfg.Yellow != 3*time.Second {
		t.Errorf("Yellow = %v, want 3s (env should override file)", cfg.Yellow)
	}
	if cfg.PedCross != 15*time.Second {
		t.Errorf("PedCross = %v, want 15s (file should set)", cfg.PedCross)
	}
	if !cfg.SafeStop {
		t.Error("SafeStop = false, want true (file should set)")
	}
	if cfg.AllRed != time.Second {
		t.Errorf("AllRed = %v, want default 1s", cfg.AllRed)
	}
}
