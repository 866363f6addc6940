package intersection

import "github.com/bft-labs/trafficd/internal/app"

// State represents the lifecycle state of an Intersection.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return toApp(s).String()
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives intersection events. Handlers run on the goroutine
// that produced the event and must return quickly: a slow OnPhaseChange
// delays the next phase.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnPhaseChange(change PhaseChange)
	OnRequest(req Request)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnPhaseChange(PhaseChange)      {}
func (BaseEventHandler) OnRequest(Request)              {}

// Renderer displays phase changes and operator requests.
type Renderer interface {
	OnPhaseChange(change PhaseChange)
	OnRequest(req Request)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: fromApp(previous),
		Current:  fromApp(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnPhaseChange(change PhaseChange) {
	if e.handler == nil {
		return
	}
	e.handler.OnPhaseChange(change)
}

func (e *eventEmitterWrapper) OnRequest(req Request) {
	if e.handler == nil {
		return
	}
	e.handler.OnRequest(req)
}

func fromApp(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

func toApp(s State) app.State {
	switch s {
	case StateStopped:
		return app.StateStopped
	case StateStarting:
		return app.StateStarting
	case StateRunning:
		return app.StateRunning
	case StateStopping:
		return app.StateStopping
	case StateCrashed:
		return app.StateCrashed
	default:
		return app.State(-1)
	}
}
