package intersection

import (
	"io"

	"github.com/bft-labs/trafficd/pkg/log"
)

// Option configures optional behavior of an Intersection.
type Option func(*options)

// options holds the optional configuration for an Intersection instance.
type options struct {
	logger       log.Logger
	eventHandler EventHandler
	timer        PhaseTimer
	renderers    []Renderer
	input        io.Reader
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for intersection events.
// Events are called synchronously from the controller and input goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithTimer replaces the phase timer selected by Config.Timer. The
// intersection takes ownership and closes it on Stop.
func WithTimer(t PhaseTimer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// WithRenderer adds an operator display. It receives every phase commit and
// every applied command, after the event handler.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		o.renderers = append(o.renderers, r)
	}
}

// WithInput reads operator keys from r while the intersection runs.
// Without it, commands can only be issued through Submit.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithPlugin registers a plugin to be initialized when the intersection
// starts. Plugins are initialized in registration order and shut down in
// reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
