package timer

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/trafficd/internal/domain"
)

func implementations(t *testing.T) map[string]func() PhaseTimer {
	t.Helper()
	impls := map[string]func() PhaseTimer{
		"runtime": func() PhaseTimer { return newRuntimeTimer() },
	}
	if osTimerSupported {
		impls["os"] = func() PhaseTimer {
			pt, err := newOSTimer()
			require.NoError(t, err)
			return pt
		}
	}
	return impls
}

func TestPhaseTimer_Expires(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			defer pt.Close()

			require.NoError(t, pt.Arm(20*time.Millisecond))
			select {
			case <-pt.C():
			case <-time.After(time.Second):
				t.Fatal("timer did not expire")
			}
			assert.False(t, pt.PollExpired(), "token consumed by C must not be seen again")
		})
	}
}

func TestPhaseTimer_PollExpiredResetsOnRead(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			defer pt.Close()

			require.NoError(t, pt.Arm(10*time.Millisecond))
			assert.Eventually(t, pt.PollExpired, time.Second, 5*time.Millisecond)
			assert.False(t, pt.PollExpired())
		})
	}
}

func TestPhaseTimer_ZeroIsImmediate(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			defer pt.Close()

			require.NoError(t, pt.Arm(0))
			assert.True(t, pt.PollExpired())
			assert.False(t, pt.PollExpired())
		})
	}
}

func TestPhaseTimer_RearmReplacesDeadline(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			defer pt.Close()

			require.NoError(t, pt.Arm(30*time.Millisecond))
			require.NoError(t, pt.Arm(time.Hour))

			select {
			case <-pt.C():
				t.Fatal("overwritten deadline expired")
			case <-time.After(150 * time.Millisecond):
			}
		})
	}
}

func TestPhaseTimer_RearmDiscardsPendingToken(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			defer pt.Close()

			require.NoError(t, pt.Arm(0))
			require.NoError(t, pt.Arm(time.Hour))
			assert.False(t, pt.PollExpired())
		})
	}
}

func TestPhaseTimer_ArmAfterClose(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			pt := mk()
			require.NoError(t, pt.Close())
			require.NoError(t, pt.Close())

			err := pt.Arm(time.Second)
			assert.True(t, errors.Is(err, domain.ErrTimerClosed), "got %v", err)
		})
	}
}

func TestNew(t *testing.T) {
	pt, err := New(KindRuntime)
	require.NoError(t, err)
	require.NoError(t, pt.Close())

	pt, err = New(KindAuto)
	require.NoError(t, err)
	require.NoError(t, pt.Close())

	pt, err = New(KindOS)
	if runtime.GOOS == "linux" {
		require.NoError(t, err)
		require.NoError(t, pt.Close())
	} else {
		assert.ErrorIs(t, err, domain.ErrTimerCreate)
	}

	_, err = New(Kind("sundial"))
	assert.ErrorIs(t, err, domain.ErrTimerCreate)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindAuto, false},
		{"auto", KindAuto, false},
		{"OS", KindOS, false},
		{" runtime ", KindRuntime, false},
		{"posix", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidConfig, "ParseKind(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseKind(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestManual(t *testing.T) {
	m := NewManual()

	assert.False(t, m.Fire(), "nothing armed")

	require.NoError(t, m.Arm(5*time.Second))
	assert.Equal(t, 5*time.Second, <-m.Armed())
	assert.False(t, m.PollExpired())

	assert.True(t, m.Fire())
	assert.False(t, m.Fire(), "one expiry per arm")
	assert.True(t, m.PollExpired())
	assert.False(t, m.PollExpired())

	boom := errors.New("boom")
	m.FailNextArm(boom)
	assert.ErrorIs(t, m.Arm(time.Second), boom)
	require.NoError(t, m.Arm(0))
	assert.True(t, m.PollExpired())

	assert.Equal(t, []time.Duration{5 * time.Second, 0}, m.Arms())

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Arm(time.Second), domain.ErrTimerClosed)
}
