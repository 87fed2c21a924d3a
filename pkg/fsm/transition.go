package fsm

// Transition represents an allowable transition from one state to another
type Transition struct {
	From State
	To   State
}

// T is a shorthand function for declaring allowable transitions during machine creation
func T(from State, tos ...State) []Transition {
	var transitions []Transition
	for _, to := range tos {
		transitions = append(transitions, Transition{
			From: from,
			To:   to,
		})
	}
	return transitions
}

func flatten(t [][]Transition) []Transition {
	var transitions []Transition
	for _, t1 := range t {
		transitions = append(transitions, t1...)
	}
	return transitions
}
