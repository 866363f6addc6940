package intersection

import (
	"context"
	"fmt"
	"sync"

	"github.com/bft-labs/trafficd/internal/app"
	"github.com/bft-labs/trafficd/internal/control"
	"github.com/bft-labs/trafficd/internal/timer"
	"github.com/bft-labs/trafficd/pkg/log"
)

// Intersection is a traffic-intersection controller that can be embedded in
// other applications. Use New() to create an instance, then Start() to begin
// cycling.
type Intersection struct {
	opts      options
	lifecycle *app.Lifecycle
	logger    log.Logger
	emitter   *eventEmitterWrapper
	plugins   []Plugin

	// startMu serializes Start and Stop.
	startMu sync.Mutex

	// mu guards the fields below. It is never held while calling plugins,
	// handlers or the controller loop.
	mu         sync.RWMutex
	config     Config
	timer      PhaseTimer
	state      *control.SharedState
	controller *control.Controller
	listener   *control.Listener
	done       <-chan struct{}
	runs       int

	// initialized holds the plugins Stop still has to shut down.
	initialized []Plugin
}

// New creates a new Intersection with the given configuration.
// The instance is created in StateStopped; call Start() to begin cycling.
// Returns an error if configuration is invalid or the phase timer cannot be
// created.
func New(cfg Config, opts ...Option) (*Intersection, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pt := o.timer
	if pt == nil {
		var err error
		if pt, err = newTimer(cfg.Timer); err != nil {
			return nil, err
		}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	i := &Intersection{
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		logger:    o.logger,
		emitter:   emitter,
		plugins:   o.plugins,
		config:    cfg,
		timer:     pt,
	}
	i.build()
	return i, nil
}

func newTimer(kind TimerKind) (PhaseTimer, error) {
	k, err := timer.ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	return timer.New(k)
}

// build wires a fresh shared state, controller and listener.
func (i *Intersection) build() {
	i.mu.Lock()
	defer i.mu.Unlock()

	observers := []control.Observer{i.emitter}
	requestObservers := []control.RequestObserver{i.emitter}
	for _, r := range i.opts.renderers {
		observers = append(observers, r)
		requestObservers = append(requestObservers, r)
	}

	i.state = control.NewSharedState()
	i.controller = control.NewController(i.state, i.timer, control.ControllerConfig{
		Timings:      i.config.Timings,
		PollInterval: i.config.PollInterval,
		SafeStop:     i.config.SafeStop,
	}, i.logger.With(log.Component("controller")), observers...)
	i.listener = control.NewListener(i.state, i.lifecycle.Cancel,
		i.logger.With(log.Component("input")), requestObservers...)
}

// Start begins cycling in the background.
// Returns immediately after starting the controller goroutine.
// Returns an error if already running or if startup fails.
// The provided context bounds the lifetime of the run; cancelling it has the
// same effect as the operator quitting.
func (i *Intersection) Start(ctx context.Context) error {
	i.startMu.Lock()
	defer i.startMu.Unlock()

	if !i.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}

	if err := i.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	if err := i.prepareRun(); err != nil {
		_ = i.lifecycle.TransitionTo(app.StateCrashed, "timer creation failed")
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	i.lifecycle.SetCancel(cancel)

	i.mu.Lock()
	i.done = runCtx.Done()
	ctrl, listener := i.controller, i.listener
	run := i.runs
	i.mu.Unlock()

	pluginCfg := PluginConfig{
		Logger:        i.logger,
		Timings:       i.Timings,
		UpdateTimings: i.UpdateTimings,
		Submit:        i.Submit,
	}
	for n, p := range i.plugins {
		if err := initializePlugin(runCtx, p, pluginCfg); err != nil {
			i.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			i.shutdownPlugins(i.plugins[:n])
			_ = i.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		i.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	i.mu.Lock()
	i.initialized = append([]Plugin(nil), i.plugins...)
	i.mu.Unlock()

	i.lifecycle.Go("controller", func() error {
		return ctrl.Run(runCtx)
	}, func(err error) {
		_ = i.lifecycle.TransitionTo(app.StateCrashed, "controller: "+err.Error())
	})

	if input := i.opts.input; input != nil {
		i.lifecycle.Go("input", func() error {
			return listener.Run(runCtx, input)
		}, nil)
	}

	i.logger.Info("intersection started",
		log.Int("run", run),
		log.Int("plugins", len(i.plugins)),
		log.Bool("console_input", i.opts.input != nil),
	)
	return i.lifecycle.TransitionTo(app.StateRunning, "controller started")
}

// prepareRun recreates the timer and the controller when a previous run
// released them.
func (i *Intersection) prepareRun() error {
	i.mu.Lock()
	rerun := i.runs > 0
	i.runs++
	needTimer := i.timer == nil
	kind := i.config.Timer
	i.mu.Unlock()

	if needTimer {
		pt, err := newTimer(kind)
		if err != nil {
			return err
		}
		i.mu.Lock()
		i.timer = pt
		i.mu.Unlock()
	}
	if rerun {
		i.build()
	}
	return nil
}

// Stop shuts the intersection down: it cancels the run, waits for the
// controller and the input listener to return, shuts plugins down in reverse
// order and releases the phase timer.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (i *Intersection) Stop() error {
	i.startMu.Lock()
	defer i.startMu.Unlock()

	if !i.lifecycle.CanStop() {
		return ErrNotRunning
	}

	if err := i.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	i.lifecycle.Cancel()

	err := i.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	i.mu.Lock()
	plugins := i.initialized
	i.initialized = nil
	i.mu.Unlock()
	i.shutdownPlugins(plugins)

	i.mu.Lock()
	pt := i.timer
	i.timer = nil
	i.mu.Unlock()
	if pt != nil {
		if cerr := pt.Close(); cerr != nil {
			i.logger.Warn("phase timer close failed", log.Err(cerr))
		}
	}

	if err != nil {
		_ = i.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = i.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// shutdownPlugins shuts plugins down in reverse order, continuing past
// failures.
func (i *Intersection) shutdownPlugins(plugins []Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	for n := len(plugins) - 1; n >= 0; n-- {
		p := plugins[n]
		if err := shutdownPlugin(ctx, p); err != nil {
			i.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			continue
		}
		i.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (i *Intersection) Status() State {
	return fromApp(i.lifecycle.State())
}

// Done returns a channel closed when the current run ends, either because
// the operator quit, the Start context was cancelled, or Stop was called.
// Before the first Start it returns nil.
func (i *Intersection) Done() <-chan struct{} {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.done
}

// Snapshot returns a consistent copy of the phase and pending requests.
func (i *Intersection) Snapshot() Snapshot {
	i.mu.RLock()
	state := i.state
	i.mu.RUnlock()
	return state.Snapshot()
}

// Submit applies an operator command as if it had been typed on the
// console. CommandQuit ends the current run; call Stop to release resources.
func (i *Intersection) Submit(cmd Command) Request {
	i.mu.RLock()
	listener := i.listener
	i.mu.RUnlock()
	return listener.Apply(cmd)
}

// Timings returns the timings used for the next phase entry.
func (i *Intersection) Timings() Timings {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.config.Timings
}

// UpdateTimings replaces the phase timings. The phase currently displayed
// keeps its deadline; the new durations apply from the next phase entry and
// survive a restart.
func (i *Intersection) UpdateTimings(t Timings) error {
	if err := t.Validate(); err != nil {
		return err
	}

	i.mu.Lock()
	i.config.Timings = t
	ctrl := i.controller
	i.mu.Unlock()

	return ctrl.SetTimings(t)
}
