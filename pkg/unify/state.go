package unify

import (
	"fmt"
	"strings"
)

// State is a node of the merge state machines.
type State int

const (
	StateMain State = iota
	StateMerge
	StateUnion
	StateNextERA
	StateNextERA2
	StateNextERB0
	StateNextERB1
	StateWriteERA
	StateTempLabel
	StateTail
	StateNewLabel
	StateEnd

	numStates
)

var stateNames = [numStates]string{
	"MAIN", "MERGE", "UNION", "NEXT_ERA", "NEXT_ERA2", "NEXT_ERB0",
	"NEXT_ERB1", "WRITE_ERA", "TEMP_LABEL", "TAIL", "NEW_LABEL", "END",
}

func (s State) String() string {
	if s < 0 || s >= numStates {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Observer is told about every transition of the merge state machines.
// A nil Observer costs one comparison per transition.
type Observer interface {
	Transition(from, to State)
}

// StateCounters counts transitions by (from, to) pair.
type StateCounters struct {
	counts [numStates][numStates]uint64
}

// Transition implements Observer.
func (sc *StateCounters) Transition(from, to State) {
	sc.counts[from][to]++
}

// Count returns how often the machine went from one state to another.
func (sc *StateCounters) Count(from, to State) uint64 {
	return sc.counts[from][to]
}

// Entered returns how often state was entered.
func (sc *StateCounters) Entered(state State) uint64 {
	var n uint64
	for from := range sc.counts {
		n += sc.counts[from][state]
	}
	return n
}

// Total returns the number of transitions seen.
func (sc *StateCounters) Total() uint64 {
	var n uint64
	for from := range sc.counts {
		for to := range sc.counts[from] {
			n += sc.counts[from][to]
		}
	}
	return n
}

// Reset clears every counter.
func (sc *StateCounters) Reset() {
	sc.counts = [numStates][numStates]uint64{}
}

// String lists the non-zero transitions, one per line.
func (sc *StateCounters) String() string {
	var b strings.Builder
	for from := State(0); from < numStates; from++ {
		for to := State(0); to < numStates; to++ {
			if n := sc.counts[from][to]; n != 0 {
				fmt.Fprintf(&b, "%s -> %s: %d\n", from, to, n)
			}
		}
	}
	return b.String()
}
