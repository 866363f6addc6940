package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/bft-labs/trafficd/internal/domain"
	"github.com/bft-labs/trafficd/pkg/log"
)

// Command is an operator command typed on the console.
type Command int

const (
	CommandNone Command = iota
	CommandPedestrianNS
	CommandPedestrianEW
	CommandToggleEmergency
	CommandQuit
)

// String returns a human-readable representation of the command.
func (c Command) String() string {
	switch c {
	case CommandPedestrianNS:
		return "pedestrian-ns"
	case CommandPedestrianEW:
		return "pedestrian-ew"
	case CommandToggleEmergency:
		return "toggle-emergency"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// ParseCommand maps a key to its command. Keys are case-insensitive.
func ParseCommand(r rune) (Command, bool) {
	switch unicode.ToLower(r) {
	case 'n':
		return CommandPedestrianNS, true
	case 'e':
		return CommandPedestrianEW, true
	case 's':
		return CommandToggleEmergency, true
	case 'q':
		return CommandQuit, true
	default:
		return CommandNone, false
	}
}

// Request is the outcome of one applied command.
type Request struct {
	Command  Command
	Accepted bool

	// EmergencyActive reports whether EMERGENCY was displayed when the
	// command was applied.
	EmergencyActive bool
}

// RequestObserver is notified of every applied command.
type RequestObserver interface {
	OnRequest(req Request)
}

// Listener turns console keys into SharedState requests.
type Listener struct {
	state     *SharedState
	quit      context.CancelFunc
	logger    log.Logger
	observers []RequestObserver
}

// NewListener creates a listener. quit is called when the operator asks to
// stop and must cancel the context shared with the controller.
func NewListener(state *SharedState, quit context.CancelFunc, logger log.Logger, observers ...RequestObserver) *Listener {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Listener{
		state:     state,
		quit:      quit,
		logger:    logger,
		observers: observers,
	}
}

// Apply executes cmd against the shared state.
func (l *Listener) Apply(cmd Command) Request {
	req := Request{Command: cmd}

	switch cmd {
	case CommandPedestrianNS:
		req.Accepted = l.state.RequestPedestrian(domain.DirectionNS)
		req.EmergencyActive = !req.Accepted
	case CommandPedestrianEW:
		req.Accepted = l.state.RequestPedestrian(domain.DirectionEW)
		req.EmergencyActive = !req.Accepted
	case CommandToggleEmergency:
		req.EmergencyActive = l.state.RequestEmergencyToggle()
		req.Accepted = true
	case CommandQuit:
		req.Accepted = true
		if l.quit != nil {
			l.quit()
		}
	default:
		return req
	}

	if req.Accepted {
		l.logger.Info("operator request", log.Stringer("command", cmd))
	} else {
		l.logger.Info("operator request dropped during emergency", log.Stringer("command", cmd))
	}
	for _, o := range l.observers {
		o.OnRequest(req)
	}
	return req
}

// Run reads keys from r until the operator quits, r is exhausted, or ctx is
// cancelled. End of input returns nil without stopping the controller.
//
// A blocked Read cannot be interrupted, so reading happens in a pump
// goroutine; Run itself returns as soon as ctx is cancelled while the pump
// stays parked until r yields or the process exits.
func (l *Listener) Run(ctx context.Context, r io.Reader) error {
	keys := make(chan rune)
	readErr := make(chan error, 1)
	go pump(ctx, bufio.NewReader(r), keys, readErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				l.logger.Info("console input closed")
				return nil
			}
			return fmt.Errorf("read console: %w", err)
		case key := <-keys:
			cmd, ok := ParseCommand(key)
			if !ok {
				if !unicode.IsSpace(key) {
					l.logger.Debug("unknown command ignored", log.String("key", string(key)))
				}
				continue
			}
			l.Apply(cmd)
			if cmd == CommandQuit {
				return nil
			}
		}
	}
}

func pump(ctx context.Context, r *bufio.Reader, keys chan<- rune, readErr chan<- error) {
	for {
		key, _, err := r.ReadRune()
		if err != nil {
			readErr <- err
			return
		}
		select {
		case keys <- key:
		case <-ctx.Done():
			return
		}
	}
}
