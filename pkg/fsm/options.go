package fsm

// MachineOption represents options to initially set up a machine
type MachineOption func(m *Machine) error

// WithTransitions adds multiple edges to the transition graph using the T(from, to...) short function.  For example,
// `NewMachine(Initial, WithTransitions(T(One, Two, Three), T(Two, Three)))`
func WithTransitions(transitions ...[]Transition) MachineOption {
	return func(m *Machine) error {
		for _, t := range flatten(transitions) {
			if !contains(t.To, m.allowable[t.From]) {
				m.allowable[t.From] = append(m.allowable[t.From], t.To)
			}
		}
		return nil
	}
}

// WithObserver registers a function called after each successful transition, e.g. for logging
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) error {
		m.observers = append(m.observers, o)
		return nil
	}
}
