package domain

import "errors"

// Domain errors represent error conditions in the trafficd domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("trafficd: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("trafficd: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("trafficd: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("trafficd: invalid configuration")

	// ErrTimerCreate is returned when the phase timer cannot be created.
	// The controller must not start without a working timer.
	ErrTimerCreate = errors.New("trafficd: create phase timer")

	// ErrTimerClosed is returned when a closed phase timer is armed.
	ErrTimerClosed = errors.New("trafficd: phase timer closed")
)
