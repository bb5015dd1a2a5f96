package fsm

import (
	"fmt"
	"maps"
	"slices"
)

// DFA is a deterministic finite automaton: at most one target per
// (state, symbol) pair and no epsilon transitions.
//
// A DFA is grown incrementally by subset construction or minimization and
// becomes effectively immutable once its builder returns. It never shares
// mutable state with the automaton it was derived from.
type DFA struct {
	start       string
	states      map[string]struct{}
	finals      map[string]struct{}
	transitions map[string]map[string]string // from -> symbol -> target
}

// NewDFA creates an empty DFA with the given start state. The start state
// must still be declared via AddState before Validate passes.
func NewDFA(start string) *DFA {
	return &DFA{
		start:       start,
		states:      make(map[string]struct{}),
		finals:      make(map[string]struct{}),
		transitions: make(map[string]map[string]string),
	}
}

// AddState declares a state. Finality is sticky, as for [NFA.AddState].
func (d *DFA) AddState(name string, final bool) error {
	if name == "" {
		return ErrInvalidStateID
	}
	d.states[name] = struct{}{}
	if final {
		d.finals[name] = struct{}{}
	}
	return nil
}

// SetTransition records the single target for (from, symbol). Setting the
// same target twice is a no-op; redefining the pair with a different target
// returns ErrConflictingTransition. Epsilon symbols are rejected outright.
func (d *DFA) SetTransition(from, symbol, to string) error {
	if from == "" || to == "" {
		return ErrInvalidStateID
	}
	if symbol == Epsilon {
		return ErrEpsilonInDFA
	}
	row := d.transitions[from]
	if row == nil {
		row = make(map[string]string)
		d.transitions[from] = row
	}
	if existing, ok := row[symbol]; ok && existing != to {
		return fmt.Errorf("%s --%s--> %s vs %s: %w", from, symbol, existing, to, ErrConflictingTransition)
	}
	row[symbol] = to
	return nil
}

// Validate checks structural invariants: non-empty state set, declared start
// state, and declared endpoints for every transition.
func (d *DFA) Validate() error {
	if len(d.states) == 0 {
		return ErrNoStates
	}
	if d.start == "" {
		return ErrNoStartState
	}
	if _, ok := d.states[d.start]; !ok {
		return fmt.Errorf("start state %q: %w", d.start, ErrUnknownState)
	}
	for _, from := range slices.Sorted(maps.Keys(d.transitions)) {
		if _, ok := d.states[from]; !ok {
			return fmt.Errorf("transition source %q: %w", from, ErrUnknownState)
		}
		row := d.transitions[from]
		for _, symbol := range slices.Sorted(maps.Keys(row)) {
			if _, ok := d.states[row[symbol]]; !ok {
				return fmt.Errorf("transition %s --%s--> %s: %w", from, symbol, row[symbol], ErrUnknownState)
			}
		}
	}
	return nil
}

// StartState returns the start state identifier.
func (d *DFA) StartState() string { return d.start }

// States returns all declared state identifiers, sorted.
func (d *DFA) States() []string {
	return slices.Sorted(maps.Keys(d.states))
}

// FinalStates returns the accepting state identifiers, sorted.
func (d *DFA) FinalStates() []string {
	return slices.Sorted(maps.Keys(d.finals))
}

// IsFinal reports whether the named state is accepting.
func (d *DFA) IsFinal(state string) bool {
	_, ok := d.finals[state]
	return ok
}

// StateCount returns the number of declared states.
func (d *DFA) StateCount() int { return len(d.states) }

// Symbols returns the transition symbols defined on the given state, sorted.
func (d *DFA) Symbols(state string) []string {
	return slices.Sorted(maps.Keys(d.transitions[state]))
}

// Target returns the transition target for (state, symbol) and whether one
// is defined. An undefined pair is the implicit dead state: the run rejects.
func (d *DFA) Target(state, symbol string) (string, bool) {
	to, ok := d.transitions[state][symbol]
	return to, ok
}

// Targets returns the target for (state, symbol) as a slice of zero or one
// elements, satisfying the shared [Automaton] read interface.
func (d *DFA) Targets(state, symbol string) []string {
	if to, ok := d.transitions[state][symbol]; ok {
		return []string{to}
	}
	return nil
}

// Alphabet returns every symbol in the transition table, sorted. A valid DFA
// never carries the epsilon marker, so no filtering is needed.
func (d *DFA) Alphabet() []string {
	seen := make(map[string]struct{})
	for _, row := range d.transitions {
		for symbol := range row {
			seen[symbol] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Accepts runs the input symbol sequence from the start state and reports
// whether the run ends in an accepting state. A missing transition rejects
// immediately.
func (d *DFA) Accepts(input []string) bool {
	current := d.start
	for _, symbol := range input {
		next, ok := d.Target(current, symbol)
		if !ok {
			return false
		}
		current = next
	}
	return d.IsFinal(current)
}

var _ Automaton = (*DFA)(nil)
