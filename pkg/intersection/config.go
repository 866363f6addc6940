package intersection

import (
	"fmt"
	"time"

	"github.com/bft-labs/trafficd/internal/control"
	"github.com/bft-labs/trafficd/internal/domain"
	"github.com/bft-labs/trafficd/internal/timer"
)

// Re-exported vocabulary so embedders never import internal packages.
type (
	// Timings holds the configured duration of every timed phase.
	Timings = domain.Timings

	// Phase is the signal phase currently displayed at the intersection.
	Phase = domain.Phase

	// Snapshot is a consistent copy of the shared intersection state.
	Snapshot = control.Fields

	// Command is an operator command.
	Command = control.Command

	// PhaseChange describes one phase commit, or a re-render of EMERGENCY.
	PhaseChange = control.PhaseChange

	// Request is the outcome of one applied operator command.
	Request = control.Request

	// PhaseTimer is the countdown that ends each phase.
	PhaseTimer = timer.PhaseTimer

	// TimerKind selects a PhaseTimer implementation.
	TimerKind = timer.Kind
)

const (
	PhaseInit      = domain.PhaseInit
	PhaseNSGreen   = domain.PhaseNSGreen
	PhaseNSYellow  = domain.PhaseNSYellow
	PhaseEWGreen   = domain.PhaseEWGreen
	PhaseEWYellow  = domain.PhaseEWYellow
	PhaseAllRed    = domain.PhaseAllRed
	PhasePedCross  = domain.PhasePedCross
	PhaseEmergency = domain.PhaseEmergency
)

const (
	CommandPedestrianNS    = control.CommandPedestrianNS
	CommandPedestrianEW    = control.CommandPedestrianEW
	CommandToggleEmergency = control.CommandToggleEmergency
	CommandQuit            = control.CommandQuit
)

const (
	TimerAuto    = timer.KindAuto
	TimerOS      = timer.KindOS
	TimerRuntime = timer.KindRuntime
)

// Sentinel errors returned by Intersection methods.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrTimerCreate     = domain.ErrTimerCreate
)

// DefaultTimings returns the timings used when nothing is configured.
func DefaultTimings() Timings {
	return domain.DefaultTimings()
}

// ParseCommand maps an operator key to its command.
func ParseCommand(r rune) (Command, bool) {
	return control.ParseCommand(r)
}

// Config holds the configuration of one intersection.
type Config struct {
	// Timings are the phase durations. Zero value: DefaultTimings().
	Timings Timings

	// PollInterval bounds how long a lost timer or preemption wake-up can
	// delay the controller. Default: 100ms.
	PollInterval time.Duration

	// Timer selects the phase timer implementation. Default: TimerAuto.
	Timer TimerKind

	// SafeStop commits ALL_RED before the controller returns on shutdown.
	SafeStop bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timings:      DefaultTimings(),
		PollInterval: control.DefaultPollInterval,
		Timer:        TimerAuto,
	}
}

// SetDefaults fills unset fields with their default values.
func (c *Config) SetDefaults() {
	if c.Timings == (Timings{}) {
		c.Timings = DefaultTimings()
	}
	if c.PollInterval == 0 {
		c.PollInterval = control.DefaultPollInterval
	}
	if c.Timer == "" {
		c.Timer = TimerAuto
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if err := c.Timings.Validate(); err != nil {
		return err
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative", ErrInvalidConfig)
	}
	if _, err := timer.ParseKind(string(c.Timer)); err != nil {
		return err
	}
	return nil
}
