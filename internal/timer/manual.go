package timer

import (
	"sync"
	"time"

	"github.com/bft-labs/trafficd/internal/domain"
)

// Manual is a PhaseTimer whose expiries are injected by the caller.
// Tests use it to drive the controller deterministically.
type Manual struct {
	mu      sync.Mutex
	arms    []time.Duration
	pending bool
	armErr  error
	closed  bool
	tok     token
	armed   chan time.Duration
}

// NewManual creates a Manual timer. Every successful Arm is also published
// on Armed so tests can wait for the controller to enter a phase.
func NewManual() *Manual {
	return &Manual{
		tok:   newToken(),
		armed: make(chan time.Duration, 64),
	}
}

func (m *Manual) Arm(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTimerClosed
	}
	if m.armErr != nil {
		err := m.armErr
		m.armErr = nil
		return err
	}

	m.tok.take()
	m.arms = append(m.arms, d)
	if d <= 0 {
		m.pending = false
		m.tok.set()
	} else {
		m.pending = true
	}

	select {
	case m.armed <- d:
	default:
	}
	return nil
}

// Fire expires the pending deadline. It returns false when nothing is armed.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.pending || m.closed {
		return false
	}
	m.pending = false
	m.tok.set()
	return true
}

// FailNextArm makes the next Arm call return err without scheduling.
func (m *Manual) FailNextArm(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armErr = err
}

// Armed publishes the duration of every successful Arm.
func (m *Manual) Armed() <-chan time.Duration { return m.armed }

// Arms returns a copy of every duration armed so far.
func (m *Manual) Arms() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.arms...)
}

func (m *Manual) PollExpired() bool  { return m.tok.take() }
func (m *Manual) C() <-chan struct{} { return m.tok }

func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
