package control

import (
	"sync"

	"github.com/bft-labs/trafficd/internal/domain"
)

// Fields is the record guarded by SharedState.
type Fields struct {
	Phase           domain.Phase
	PedestrianNS    bool
	PedestrianEW    bool
	EmergencyToggle bool
}

// PedestrianWaiting reports whether either crossing has been requested.
func (f Fields) PedestrianWaiting() bool {
	return f.PedestrianNS || f.PedestrianEW
}

// SharedState is the only channel of communication between the controller
// and the input listener besides the run context.
//
// Every read and write happens under one mutex, and work inside the
// critical section is limited to field assignments, so neither goroutine can
// stall the other.
type SharedState struct {
	mu sync.Mutex
	f  Fields

	// preempt holds at most one wake-up for the controller's wait.
	preempt chan struct{}
}

// NewSharedState creates a state in INIT with every request cleared.
func NewSharedState() *SharedState {
	return &SharedState{
		f:       Fields{Phase: domain.PhaseInit},
		preempt: make(chan struct{}, 1),
	}
}

// WithLock runs fn with exclusive access to the fields.
// fn must not block, sleep or perform I/O.
func (s *SharedState) WithLock(fn func(f *Fields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.f)
}

// Snapshot returns a consistent copy of the fields.
func (s *SharedState) Snapshot() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f
}

// RequestPedestrian records a crossing request for dir.
// Requests made while EMERGENCY is displayed are dropped and leave the state
// untouched; the return value reports whether the request was recorded.
func (s *SharedState) RequestPedestrian(dir domain.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f.Phase == domain.PhaseEmergency {
		return false
	}
	switch dir {
	case domain.DirectionNS:
		s.f.PedestrianNS = true
	case domain.DirectionEW:
		s.f.PedestrianEW = true
	default:
		return false
	}
	return true
}

// RequestEmergencyToggle asks the controller to flip emergency mode and
// wakes it if it is waiting for a phase to expire. Requests made before the
// controller consumes the previous one are merged. It reports whether
// EMERGENCY was displayed when the request was made.
func (s *SharedState) RequestEmergencyToggle() (wasActive bool) {
	s.mu.Lock()
	s.f.EmergencyToggle = true
	wasActive = s.f.Phase == domain.PhaseEmergency
	s.mu.Unlock()

	select {
	case s.preempt <- struct{}{}:
	default:
	}
	return wasActive
}

// Preempt is signaled after every emergency toggle request.
func (s *SharedState) Preempt() <-chan struct{} {
	return s.preempt
}

// takeEmergencyToggle consumes a pending toggle request.
func (s *SharedState) takeEmergencyToggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.f.EmergencyToggle {
		return false
	}
	s.f.EmergencyToggle = false
	return true
}

// emergencyPending reports a toggle request without consuming it.
func (s *SharedState) emergencyPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.EmergencyToggle
}
