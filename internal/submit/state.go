package submit

import "sync"

// RequestState tracks one session's submission lifecycle.
type RequestState int

const (
	StateIdle RequestState = iota
	StateInFlight
	StateDone
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	case StateDone:
		return "done"
	}
	return "unknown"
}

type stateTracker struct {
	mu     sync.Mutex
	states map[string]RequestState
}

func newStateTracker() *stateTracker {
	return &stateTracker{states: make(map[string]RequestState)}
}

// begin moves a session to in-flight unless it already is.
func (t *stateTracker) begin(session string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.states[session] == StateInFlight {
		return false
	}
	t.states[session] = StateInFlight
	return true
}

func (t *stateTracker) finish(session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[session] = StateDone
}

func (t *stateTracker) get(session string) RequestState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[session]
}

func (t *stateTracker) forget(session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[session] != StateInFlight {
		delete(t.states, session)
	}
}
