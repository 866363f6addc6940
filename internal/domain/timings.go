package domain

import (
	"fmt"
	"time"
)

// Timings holds the configured duration of every timed phase.
type Timings struct {
	// Green is the duration of NS_GREEN and EW_GREEN.
	Green time.Duration

	// Yellow is the duration of NS_YELLOW and EW_YELLOW.
	Yellow time.Duration

	// AllRed is the clearance interval between conflicting movements.
	AllRed time.Duration

	// PedCross is the pedestrian walk interval.
	PedCross time.Duration

	// InitHold is how long INIT is displayed before the first ALL_RED.
	InitHold time.Duration

	// Blink is the interval at which EMERGENCY is re-rendered.
	Blink time.Duration

	// AlternateEW routes every second ALL_RED to EW_GREEN instead of NS_GREEN.
	// Off by default, which keeps the east-west phases unreachable.
	AlternateEW bool
}

// DefaultTimings returns the timings used when nothing is configured.
func DefaultTimings() Timings {
	return Timings{
		Green:    5 * time.Second,
		Yellow:   2 * time.Second,
		AllRed:   1 * time.Second,
		PedCross: 8 * time.Second,
		InitHold: 1 * time.Second,
		Blink:    1 * time.Second,
	}
}

// Validate reports the first non-positive interval.
func (t Timings) Validate() error {
	checks := []struct {
		name string
		d    time.Duration
	}{
		{"green", t.Green},
		{"yellow", t.Yellow},
		{"all-red", t.AllRed},
		{"ped-cross", t.PedCross},
		{"blink", t.Blink},
	}
	for _, c := range checks {
		if c.d <= 0 {
			return fmt.Errorf("%w: %s duration must be positive", ErrInvalidConfig, c.name)
		}
	}
	if t.InitHold < 0 {
		return fmt.Errorf("%w: init-hold duration must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Duration returns how long phase p stays current before it expires.
func (t Timings) Duration(p Phase) time.Duration {
	switch p {
	case PhaseInit:
		return t.InitHold
	case PhaseNSGreen, PhaseEWGreen:
		return t.Green
	case PhaseNSYellow, PhaseEWYellow:
		return t.Yellow
	case PhaseAllRed:
		return t.AllRed
	case PhasePedCross:
		return t.PedCross
	case PhaseEmergency:
		return t.Blink
	default:
		return t.AllRed
	}
}
