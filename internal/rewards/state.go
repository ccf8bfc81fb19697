package rewards

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAdjustment = errors.New("exactly one of balance or delta is required")
	ErrInvalidTransition = errors.New("invalid reward state transition")
)

// State is the reward sub-state of one record.
type State string

const (
	StateStale       State = "stale"       // stored balance differs from entitlement
	StateReconciling State = "reconciling" // correction write in flight
	StateSynced      State = "synced"
	StateRedeeming   State = "redeeming" // atomic decrement in flight
	StateDenied      State = "denied"    // store reported a zero balance
)

func StateOf(stored, entitlement int) State {
	if stored == entitlement {
		return StateSynced
	}
	return StateStale
}

// Any state may fall back to Stale: a score edit or a failed write.
var transitions = map[State][]State{
	StateStale:       {StateReconciling, StateRedeeming},
	StateReconciling: {StateSynced},
	StateSynced:      {StateRedeeming},
	StateRedeeming:   {StateSynced, StateDenied},
	StateDenied:      {StateSynced, StateRedeeming},
}

func CanTransition(from, to State) bool {
	if to == StateStale {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Tracker records the path one reconciliation takes.
type Tracker struct {
	state State
	trace []State
}

func NewTracker(initial State) *Tracker {
	return &Tracker{state: initial, trace: []State{initial}}
}

func (t *Tracker) State() State { return t.state }

func (t *Tracker) Trace() []State {
	return append([]State(nil), t.trace...)
}

func (t *Tracker) Transition(to State) error {
	if !CanTransition(t.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, to)
	}
	t.state = to
	t.trace = append(t.trace, to)
	return nil
}

// must is used where the transition is fixed by control flow.
func (t *Tracker) must(to State) {
	if err := t.Transition(to); err != nil {
		panic(err)
	}
}
