package control

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/trafficd/internal/domain"
	"github.com/bft-labs/trafficd/internal/timer"
	"github.com/bft-labs/trafficd/pkg/log"
)

// DefaultPollInterval bounds how long a lost wake-up can delay emergency
// preemption.
const DefaultPollInterval = 100 * time.Millisecond

// PhaseChange describes one phase commit, or a re-render of EMERGENCY.
type PhaseChange struct {
	Previous domain.Phase
	Current  domain.Phase
	Fields   Fields
	Reason   string
	At       time.Time
}

// Observer is notified after every phase commit, outside the state lock.
type Observer interface {
	OnPhaseChange(change PhaseChange)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(change PhaseChange)

func (f ObserverFunc) OnPhaseChange(change PhaseChange) { f(change) }

// ControllerConfig configures the controller loop.
type ControllerConfig struct {
	Timings domain.Timings

	// PollInterval is the watchdog period of every wait. Zero disables it.
	PollInterval time.Duration

	// SafeStop commits ALL_RED before Run returns on cancellation.
	SafeStop bool
}

type waitResult int

const (
	waitExpired waitResult = iota
	waitPreempted
	waitCancelled
)

// Controller drives the intersection phase sequence.
type Controller struct {
	state        *SharedState
	timer        timer.PhaseTimer
	logger       log.Logger
	observers    []Observer
	pollInterval time.Duration
	safeStop     bool

	timingsMu sync.RWMutex
	timings   domain.Timings

	// Owned by the Run goroutine.
	next             domain.Phase
	lastGreen        domain.Phase
	emergency        bool
	clearOnNextEntry bool
}

// NewController creates a controller. It does not start any goroutine.
func NewController(state *SharedState, pt timer.PhaseTimer, cfg ControllerConfig, logger log.Logger, observers ...Observer) *Controller {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Controller{
		state:        state,
		timer:        pt,
		logger:       logger,
		observers:    observers,
		pollInterval: cfg.PollInterval,
		safeStop:     cfg.SafeStop,
		timings:      cfg.Timings,
		next:         domain.PhaseAllRed,
	}
}

// Timings returns the timings used for the next phase entry.
func (c *Controller) Timings() domain.Timings {
	c.timingsMu.RLock()
	defer c.timingsMu.RUnlock()
	return c.timings
}

// SetTimings replaces the phase timings. The phase currently displayed keeps
// its armed deadline; the new values apply from the next phase entry.
func (c *Controller) SetTimings(t domain.Timings) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.timingsMu.Lock()
	c.timings = t
	c.timingsMu.Unlock()

	c.logger.Info("phase timings updated",
		log.Duration("green", t.Green),
		log.Duration("yellow", t.Yellow),
		log.Duration("all_red", t.AllRed),
		log.Duration("ped_cross", t.PedCross),
		log.Bool("alternate_ew", t.AlternateEW),
	)
	return nil
}

// Run executes the controller loop until ctx is cancelled.
// It always returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	c.enter(domain.PhaseInit, "startup")
	if c.wait(ctx, c.Timings().InitHold) == waitCancelled {
		return c.finish(ctx)
	}

	for {
		if ctx.Err() != nil {
			return c.finish(ctx)
		}

		c.consumeToggle()
		if c.emergency {
			c.runEmergency(ctx)
			continue
		}

		phase := c.next
		c.enter(phase, "cycle")

		switch c.wait(ctx, c.Timings().Duration(phase)) {
		case waitCancelled:
			return c.finish(ctx)
		case waitPreempted:
			// The toggle is consumed at the top of the loop. c.next is left
			// alone: leaving emergency always restarts from ALL_RED.
			continue
		}

		t := c.Timings()
		c.next = Next(phase, c.state.Snapshot().PedestrianWaiting(), c.lastGreen, t.AlternateEW)
	}
}

// consumeToggle applies a pending emergency toggle request.
func (c *Controller) consumeToggle() {
	if !c.state.takeEmergencyToggle() {
		return
	}

	c.emergency = !c.emergency
	if c.emergency {
		c.clearOnNextEntry = true
		c.logger.Warn("emergency mode activated")
		return
	}
	c.next = domain.PhaseAllRed
	c.logger.Info("emergency mode cleared, restarting from all-red")
}

// runEmergency holds EMERGENCY, re-rendering it every blink interval, until
// the mode is toggled off or ctx is cancelled.
func (c *Controller) runEmergency(ctx context.Context) {
	c.enter(domain.PhaseEmergency, "emergency")

	for c.emergency {
		switch c.wait(ctx, c.Timings().Blink) {
		case waitCancelled:
			return
		case waitExpired:
			c.notify(PhaseChange{
				Previous: domain.PhaseEmergency,
				Current:  domain.PhaseEmergency,
				Fields:   c.state.Snapshot(),
				Reason:   "blink",
				At:       time.Now(),
			})
		}
		c.consumeToggle()
	}
}

// enter commits phase together with its entry side effects in one critical
// section, so no reader sees the phase without them.
func (c *Controller) enter(phase domain.Phase, reason string) {
	clearRequests := phase == domain.PhasePedCross ||
		(c.clearOnNextEntry && phase != domain.PhaseEmergency)

	var prev domain.Phase
	var snap Fields
	c.state.WithLock(func(f *Fields) {
		prev = f.Phase
		f.Phase = phase
		if clearRequests {
			f.PedestrianNS = false
			f.PedestrianEW = false
		}
		snap = *f
	})

	if phase != domain.PhaseEmergency {
		c.clearOnNextEntry = false
	}
	if phase == domain.PhaseNSGreen || phase == domain.PhaseEWGreen {
		c.lastGreen = phase
	}

	c.logger.Debug("phase committed",
		log.Stringer("from", prev),
		log.Stringer("to", phase),
		log.String("reason", reason),
	)
	c.notify(PhaseChange{Previous: prev, Current: phase, Fields: snap, Reason: reason, At: time.Now()})
}

// wait arms the timer for d and blocks until it expires, an emergency toggle
// is requested, or ctx is cancelled.
func (c *Controller) wait(ctx context.Context, d time.Duration) waitResult {
	if err := c.timer.Arm(d); err != nil {
		// Fail open: a stuck phase is worse than a short one.
		c.logger.Error("phase timer arm failed, treating phase as expired",
			log.Err(err),
			log.Duration("duration", d),
		)
		return c.holdUntimed(ctx)
	}

	var watchdog <-chan time.Time
	if c.pollInterval > 0 {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		watchdog = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return waitCancelled
		case <-c.timer.C():
			return waitExpired
		case <-c.state.Preempt():
			if c.state.emergencyPending() {
				return waitPreempted
			}
		case <-watchdog:
			if c.state.emergencyPending() {
				return waitPreempted
			}
			if c.timer.PollExpired() {
				return waitExpired
			}
		}
	}
}

// holdUntimed keeps an untimed phase up for one poll interval, so a timer
// that keeps failing cannot spin the cycle.
func (c *Controller) holdUntimed(ctx context.Context) waitResult {
	hold := c.pollInterval
	if hold <= 0 {
		hold = DefaultPollInterval
	}
	t := time.NewTimer(hold)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return waitCancelled
		case <-c.state.Preempt():
			if c.state.emergencyPending() {
				return waitPreempted
			}
		case <-t.C:
			return waitExpired
		}
	}
}

func (c *Controller) finish(ctx context.Context) error {
	if c.safeStop {
		c.enter(domain.PhaseAllRed, "shutdown")
	}
	c.logger.Info("controller stopped")
	return ctx.Err()
}

func (c *Controller) notify(change PhaseChange) {
	for _, o := range c.observers {
		o.OnPhaseChange(change)
	}
}
