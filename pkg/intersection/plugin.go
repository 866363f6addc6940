package intersection

import (
	"context"
	"fmt"

	"github.com/bft-labs/trafficd/pkg/log"
)

// Plugin extends an Intersection with optional behavior that shares its
// lifetime.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize is called by Start before the controller runs. ctx is
	// cancelled when the intersection stops. Returning an error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called by Stop after the controller has returned.
	Shutdown(ctx context.Context) error
}

// PluginConfig gives plugins access to the running intersection.
type PluginConfig struct {
	Logger log.Logger

	// Timings returns the timings currently in effect.
	Timings func() Timings

	// UpdateTimings replaces the phase timings; see Intersection.UpdateTimings.
	UpdateTimings func(t Timings) error

	// Submit applies an operator command; see Intersection.Submit.
	Submit func(cmd Command) Request
}

// BasePlugin provides no-op implementations of Plugin. Embed it and override
// what you need.
type BasePlugin struct {
	PluginName string
}

func (b BasePlugin) Name() string                                 { return b.PluginName }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }

// initializePlugin runs p.Initialize, turning a panic into an error.
func initializePlugin(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during initialization: %v", p.Name(), r)
		}
	}()
	return p.Initialize(ctx, cfg)
}

// shutdownPlugin runs p.Shutdown, turning a panic into an error.
func shutdownPlugin(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during shutdown: %v", p.Name(), r)
		}
	}()
	return p.Shutdown(ctx)
}
