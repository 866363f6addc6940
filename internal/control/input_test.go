package control

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/trafficd/internal/domain"
)

type requestLog struct {
	mu   sync.Mutex
	reqs []Request
}

func (r *requestLog) OnRequest(req Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *requestLog) all() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.reqs...)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		key  rune
		want Command
		ok   bool
	}{
		{'n', CommandPedestrianNS, true},
		{'N', CommandPedestrianNS, true},
		{'e', CommandPedestrianEW, true},
		{'E', CommandPedestrianEW, true},
		{'s', CommandToggleEmergency, true},
		{'S', CommandToggleEmergency, true},
		{'q', CommandQuit, true},
		{'Q', CommandQuit, true},
		{'\n', CommandNone, false},
		{'x', CommandNone, false},
		{'1', CommandNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCommand(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestListener_RunAppliesCommands(t *testing.T) {
	s := NewSharedState()
	reqs := &requestLog{}
	l := NewListener(s, nil, nil, reqs)

	err := l.Run(context.Background(), strings.NewReader("n\nE\ns\n"))
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.True(t, snap.PedestrianNS)
	assert.True(t, snap.PedestrianEW)
	assert.True(t, snap.EmergencyToggle)

	got := reqs.all()
	require.Len(t, got, 3)
	assert.Equal(t, CommandPedestrianNS, got[0].Command)
	assert.Equal(t, CommandPedestrianEW, got[1].Command)
	assert.Equal(t, Request{Command: CommandToggleEmergency, Accepted: true}, got[2])
}

func TestListener_UnknownInputLeavesStateUnchanged(t *testing.T) {
	s := NewSharedState()
	before := s.Snapshot()
	reqs := &requestLog{}
	l := NewListener(s, nil, nil, reqs)

	require.NoError(t, l.Run(context.Background(), strings.NewReader("xyz 42\n\r\t?")))

	assert.Equal(t, before, s.Snapshot())
	assert.Empty(t, reqs.all())
}

func TestListener_PedestrianDroppedDuringEmergency(t *testing.T) {
	s := NewSharedState()
	s.WithLock(func(f *Fields) { f.Phase = domain.PhaseEmergency })
	before := s.Snapshot()
	reqs := &requestLog{}
	l := NewListener(s, nil, nil, reqs)

	require.NoError(t, l.Run(context.Background(), strings.NewReader("nNeE")))

	assert.Equal(t, before, s.Snapshot())
	for _, r := range reqs.all() {
		assert.False(t, r.Accepted)
		assert.True(t, r.EmergencyActive)
	}
}

func TestListener_Quit(t *testing.T) {
	s := NewSharedState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var quits int
	l := NewListener(s, func() { quits++; cancel() }, nil)

	// Keys after the quit are never applied.
	require.NoError(t, l.Run(ctx, strings.NewReader("Qn")))
	assert.Equal(t, 1, quits)
	assert.Error(t, ctx.Err())
	assert.False(t, s.Snapshot().PedestrianNS)
}

func TestListener_EOFDoesNotQuit(t *testing.T) {
	s := NewSharedState()
	var quit bool
	l := NewListener(s, func() { quit = true }, nil)

	require.NoError(t, l.Run(context.Background(), strings.NewReader("")))
	assert.False(t, quit)
}

func TestListener_ReturnsOnCancelWhileReadBlocks(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	l := NewListener(NewSharedState(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, pr) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(DefaultPollInterval):
		t.Fatal("listener did not observe cancellation")
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestListener_ReadError(t *testing.T) {
	boom := errors.New("tty gone")
	l := NewListener(NewSharedState(), nil, nil)

	err := l.Run(context.Background(), failingReader{err: boom})
	assert.ErrorIs(t, err, boom)
}
