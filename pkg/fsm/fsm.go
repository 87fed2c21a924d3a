// Package fsm implements a small finite state machine used to track the lifecycle of an analysis session
package fsm

import (
	"fmt"
	"sync"
)

// State represents a possible state of the machine
type State string

// Machine is a basic finite state machine.  It is safe for concurrent use.
type Machine struct {
	mu        sync.RWMutex
	current   State
	allowable map[State][]State
	observers []Observer
}

// Observer is called after every successful transition
type Observer func(from, to State)

// NewMachine returns a new Machine with configured options.  If you do not utilize any options, the machine will not
// have any configured transitions.
func NewMachine(initial State, opts ...MachineOption) (*Machine, error) {
	machine := &Machine{
		current:   initial,
		allowable: map[State][]State{},
	}
	for _, opt := range opts {
		if err := opt(machine); err != nil {
			return nil, err
		}
	}
	return machine, nil
}

// State returns the current state of the Machine
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition changes the current state of the machine if it is allowable.  Otherwise it returns
// TransitionNotAllowed and the state is unchanged.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	from := m.current
	if !contains(to, m.allowable[from]) {
		m.mu.Unlock()
		return TransitionNotAllowed{Msg: fmt.Sprintf("cannot transition from state %s to %s", from, to)}
	}
	m.current = to
	observers := append([]Observer{}, m.observers...)
	m.mu.Unlock()

	for _, o := range observers {
		o(from, to)
	}
	return nil
}

func contains(s State, all []State) bool {
	for _, a := range all {
		if s == a {
			return true
		}
	}
	return false
}
