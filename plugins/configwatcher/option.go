package configwatcher

import "github.com/bft-labs/trafficd/pkg/intersection"

// WithConfigWatcher returns an intersection Option that reloads phase
// timings whenever the config file changes.
//
// Usage:
//
//	x, err := intersection.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/trafficd/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) intersection.Option {
	plugin := New(cfg)
	return intersection.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns an intersection Option that watches
// ~/.trafficd/config.toml with default settings (debounce 100ms).
//
// Usage:
//
//	x, err := intersection.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() intersection.Option {
	return WithConfigWatcher(DefaultConfig())
}
