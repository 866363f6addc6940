//go:build linux

package timer

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/trafficd/internal/domain"
)

const osTimerSupported = true

// fdTimer implements PhaseTimer with a CLOCK_MONOTONIC timerfd.
// A watcher goroutine blocks in read(2) on the descriptor through the
// runtime poller and turns each expiry into a token.
type fdTimer struct {
	mu       sync.Mutex
	fd       int
	file     *os.File
	closed   bool
	watchErr error
	tok      token
	done     chan struct{}
}

func newOSTimer() (PhaseTimer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("%w: timerfd_create: %v", domain.ErrTimerCreate, err)
	}

	t := &fdTimer{
		fd:   fd,
		file: os.NewFile(uintptr(fd), "phase-timer"),
		tok:  newToken(),
		done: make(chan struct{}),
	}
	go t.watch()
	return t, nil
}

func (t *fdTimer) watch() {
	defer close(t.done)

	var buf [8]byte
	for {
		if _, err := t.file.Read(buf[:]); err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}
			t.mu.Lock()
			t.watchErr = err
			t.mu.Unlock()
			// Wake the waiter so the failure surfaces on the next Arm.
			t.tok.set()
			return
		}
		t.expire()
	}
}

func (t *fdTimer) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	// An expiry read before a concurrent Arm is stale once the descriptor
	// holds a new pending deadline.
	var cur unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &cur); err == nil && (cur.Value.Sec != 0 || cur.Value.Nsec != 0) {
		return
	}
	t.tok.set()
}

func (t *fdTimer) Arm(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTimerClosed
	}
	if t.watchErr != nil {
		return fmt.Errorf("timerfd read: %w", t.watchErr)
	}
	t.tok.take()

	// A zero it_value disarms the descriptor, so immediate expiry is
	// delivered directly.
	var spec unix.ItimerSpec
	if d > 0 {
		spec.Value = unix.NsecToTimespec(d.Nanoseconds())
	}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd_settime: %w", err)
	}
	if d <= 0 {
		t.tok.set()
	}
	return nil
}

func (t *fdTimer) PollExpired() bool  { return t.tok.take() }
func (t *fdTimer) C() <-chan struct{} { return t.tok }

func (t *fdTimer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.file.Close()
	<-t.done
	return err
}
