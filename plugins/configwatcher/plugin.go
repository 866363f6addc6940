// Package configwatcher reloads phase timings while an intersection runs.
// When enabled, it watches the trafficd config file and applies the
// [timings] table from the next phase entry onward.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/trafficd/internal/cliconfig"
	"github.com/bft-labs/trafficd/pkg/intersection"
	"github.com/bft-labs/trafficd/pkg/log"
)

// Plugin implements config watching functionality.
// It watches the directory holding the config file, so editors that replace
// the file on save are followed too.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	changed       map[string]bool

	// Runtime state
	logger   log.Logger
	timings  func() intersection.Timings
	update   func(intersection.Timings) error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML config file to watch. An empty path disables the
	// plugin.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Changed holds the flags set on the command line. Their keys keep the
	// command-line value across reloads.
	Changed map[string]bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Path != "" {
		cfg.Path = filepath.Clean(cfg.Path)
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		changed:       cfg.Changed,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg intersection.PluginConfig) error {
	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger.With(log.Component(p.Name()))
	}
	p.timings = cfg.Timings
	p.update = cfg.UpdateTimings
	p.mu.Unlock()

	if p.path == "" || p.timings == nil || p.update == nil {
		p.logger.Warn("config watcher disabled: no config file or timing hooks")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher and drops any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

// debounceReload coalesces bursts of events into one reload.
func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload re-reads the [timings] table and applies it. Files that fail to
// parse or validate are logged and leave the running timings untouched.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Error("config reload failed", log.String("path", p.path), log.Err(err))
		return
	}

	current := p.timings()
	next := current
	if err := cliconfig.ApplyFileTimings(&next, fc.Timings, p.changed); err != nil {
		p.logger.Error("config reload failed", log.String("path", p.path), log.Err(err))
		return
	}
	if next == current {
		p.logger.Debug("config reloaded, timings unchanged")
		return
	}

	if err := p.update(next); err != nil {
		p.logger.Error("reloaded timings rejected", log.Err(err))
		return
	}
	p.logger.Info("config reloaded", log.String("path", p.path))
}

// Ensure Plugin implements intersection.Plugin.
var _ intersection.Plugin = (*Plugin)(nil)
