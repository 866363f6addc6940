package timer

import (
	"sync"
	"time"

	"github.com/bft-labs/trafficd/internal/domain"
)

// runtimeTimer implements PhaseTimer with time.AfterFunc.
type runtimeTimer struct {
	mu     sync.Mutex
	t      *time.Timer
	gen    uint64
	closed bool
	tok    token
}

func newRuntimeTimer() *runtimeTimer {
	return &runtimeTimer{tok: newToken()}
}

func (r *runtimeTimer) Arm(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrTimerClosed
	}
	if r.t != nil {
		r.t.Stop()
	}
	r.gen++
	r.tok.take()

	if d <= 0 {
		r.tok.set()
		return nil
	}

	gen := r.gen
	r.t = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// A callback already running when Arm was called again belongs to
		// the old deadline.
		if r.closed || r.gen != gen {
			return
		}
		r.tok.set()
	})
	return nil
}

func (r *runtimeTimer) PollExpired() bool  { return r.tok.take() }
func (r *runtimeTimer) C() <-chan struct{} { return r.tok }

func (r *runtimeTimer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.t != nil {
		r.t.Stop()
	}
	return nil
}
