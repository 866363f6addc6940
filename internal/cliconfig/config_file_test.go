package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/trafficd/internal/domain"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Timings: FileTimings{
					Green:       "10s",
					Yellow:      "3s",
					AllRed:      "2s",
					PedCross:    "12s",
					InitHold:    "0s",
					Blink:       "500ms",
					AlternateEW: &trueVal,
				},
				PollInterval: "20ms",
				Timer:        "runtime",
				SafeStop:     &trueVal,
				Color:        "always",
				LogLevel:     "warn",
				WatchConfig:  &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{InitHold: time.Second},
			expected: Config{
				Green:        10 * time.Second,
				Yellow:       3 * time.Second,
				AllRed:       2 * time.Second,
				PedCross:     12 * time.Second,
				Blink:        500 * time.Millisecond,
				AlternateEW:  true,
				SafeStop:     true,
				PollInterval: 20 * time.Millisecond,
				Timer:        "runtime",
				Color:        "always",
				LogLevel:     "warn",
				WatchConfig:  true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Timings: FileTimings{Green: "30s", Yellow: "4s"},
				Color:   "always",
			},
			changed:  map[string]bool{"green": true, "color": true},
			initial:  Config{Green: 7 * time.Second, Color: "never"},
			expected: Config{Green: 7 * time.Second, Yellow: 4 * time.Second, Color: "never"},
		},
		{
			name: "empty values keep current settings",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{Green: 5 * time.Second, Timer: "os", SafeStop: true},
			expected:   Config{Green: 5 * time.Second, Timer: "os", SafeStop: true},
		},
		{
			name: "invalid timing duration",
			fileConfig: FileConfig{
				Timings: FileTimings{AllRed: "red"},
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "invalid poll interval",
			fileConfig: FileConfig{
				PollInterval: "often",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyFileTimings(t *testing.T) {
	tm := domain.DefaultTimings()
	err := ApplyFileTimings(&tm, FileTimings{Green: "8s", PedCross: "4s"}, map[string]bool{"ped-cross": true})
	if err != nil {
		t.Fatalf("ApplyFileTimings() error = %v", err)
	}

	want := domain.DefaultTimings()
	want.Green = 8 * time.Second
	if tm != want {
		t.Errorf("ApplyFileTimings() = %+v, want %+v", tm, want)
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
poll_interval = "50ms"
timer = "runtime"
safe_stop = true
log_level = "debug"

[timings]
green = "6s"
ped_cross = "10s"
alternate_ew = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.PollInterval != "50ms" {
		t.Errorf("PollInterval = %v, want 50ms", fc.PollInterval)
	}
	if fc.Timer != "runtime" {
		t.Errorf("Timer = %v, want runtime", fc.Timer)
	}
	if fc.SafeStop == nil || !*fc.SafeStop {
		t.Errorf("SafeStop = %v, want true", fc.SafeStop)
	}
	if fc.WatchConfig != nil {
		t.Errorf("WatchConfig = %v, want unset", *fc.WatchConfig)
	}
	if fc.Timings.Green != "6s" || fc.Timings.PedCross != "10s" {
		t.Errorf("Timings = %+v", fc.Timings)
	}
	if fc.Timings.AlternateEW == nil || !*fc.Timings.AlternateEW {
		t.Errorf("AlternateEW = %v, want true", fc.Timings.AlternateEW)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
timer = "os"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	if _, err := LoadFileConfig(configPath); err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestLoadFileConfig_UnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "typo.toml")

	if err := os.WriteFile(configPath, []byte("[timings]\ngreen_time = \"5s\"\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	if _, err := LoadFileConfig(configPath); err == nil {
		t.Error("LoadFileConfig() expected error for unknown key")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".trafficd") {
		t.Errorf("DefaultConfigPath() = %v, should contain .trafficd", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
