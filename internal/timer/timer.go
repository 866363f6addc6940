// Package timer provides the single-shot, rearmable phase timer that drives
// the intersection controller.
//
// A PhaseTimer delivers at most one expiry per Arm call. The expiry is a
// token held in a one-slot channel: it can be consumed either by receiving
// from C or by calling PollExpired, and rearming discards any token left
// over from the previous deadline.
package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/trafficd/internal/domain"
)

// PhaseTimer is a one-shot countdown with an asynchronous expiry notification.
type PhaseTimer interface {
	// Arm schedules an expiry d from now, replacing any previous schedule.
	// d <= 0 expires immediately.
	Arm(d time.Duration) error

	// PollExpired reports whether the current deadline has expired since the
	// last call. It never blocks and returns true at most once per expiry.
	PollExpired() bool

	// C returns the notification channel. Receiving from it consumes the
	// same token PollExpired would.
	C() <-chan struct{}

	// Close releases the underlying resource.
	Close() error
}

// Kind selects a PhaseTimer implementation.
type Kind string

const (
	// KindAuto uses the OS timer where supported and the runtime timer elsewhere.
	KindAuto Kind = "auto"

	// KindOS uses a kernel timer (timerfd on Linux).
	KindOS Kind = "os"

	// KindRuntime uses the Go runtime timer.
	KindRuntime Kind = "runtime"
)

// ParseKind parses a timer kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAuto, KindOS, KindRuntime:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("%w: unknown timer kind %q", domain.ErrInvalidConfig, s)
	}
}

// New creates a PhaseTimer of the given kind.
// A returned error wraps domain.ErrTimerCreate and is fatal for the caller.
func New(kind Kind) (PhaseTimer, error) {
	switch kind {
	case KindOS:
		return newOSTimer()
	case KindRuntime:
		return newRuntimeTimer(), nil
	case KindAuto, "":
		if osTimerSupported {
			return newOSTimer()
		}
		return newRuntimeTimer(), nil
	default:
		return nil, fmt.Errorf("%w: unknown timer kind %q", domain.ErrTimerCreate, kind)
	}
}

// token is the one-slot expiry notification shared by every implementation.
type token chan struct{}

func newToken() token { return make(token, 1) }

func (t token) set() {
	select {
	case t <- struct{}{}:
	default:
	}
}

func (t token) take() bool {
	select {
	case <-t:
		return true
	default:
		return false
	}
}
