package fsm

import (
	"fmt"
	"maps"
	"slices"
)

// NFA is a nondeterministic finite automaton. A (state, symbol) pair may have
// any number of targets, and the symbol may be the [Epsilon] marker.
//
// An NFA is built once, by the deserializer or by hand, and is treated as
// immutable by every algorithm that consumes it. Transitions may be declared
// before their target state's own declaration; Validate checks that every
// referenced state was eventually declared.
//
// NFA is not safe for concurrent mutation.
type NFA struct {
	start       string
	states      map[string]struct{}
	finals      map[string]struct{}
	transitions map[string]map[string][]string // from -> symbol -> targets
}

// NewNFA creates an empty NFA with the given start state. The start state
// must still be declared via AddState before Validate passes.
func NewNFA(start string) *NFA {
	return &NFA{
		start:       start,
		states:      make(map[string]struct{}),
		finals:      make(map[string]struct{}),
		transitions: make(map[string]map[string][]string),
	}
}

// AddState declares a state. Re-adding an existing state is allowed;
// finality is sticky, so once a state has been declared final it stays final
// even if re-added with final=false.
func (n *NFA) AddState(name string, final bool) error {
	if name == "" {
		return ErrInvalidStateID
	}
	n.states[name] = struct{}{}
	if final {
		n.finals[name] = struct{}{}
	}
	return nil
}

// AddTransition appends a target to the transition set for (from, symbol),
// ignoring duplicates. Neither endpoint needs to be declared yet; dangling
// references are caught by Validate once construction is complete.
func (n *NFA) AddTransition(from, symbol, to string) error {
	if from == "" || to == "" {
		return ErrInvalidStateID
	}
	row := n.transitions[from]
	if row == nil {
		row = make(map[string][]string)
		n.transitions[from] = row
	}
	if slices.Contains(row[symbol], to) {
		return nil
	}
	row[symbol] = append(row[symbol], to)
	return nil
}

// Validate checks structural invariants: the automaton has states, the start
// state and every transition endpoint are declared. A failure means the
// source document referenced a state it never defined.
func (n *NFA) Validate() error {
	if len(n.states) == 0 {
		return ErrNoStates
	}
	if n.start == "" {
		return ErrNoStartState
	}
	if _, ok := n.states[n.start]; !ok {
		return fmt.Errorf("start state %q: %w", n.start, ErrUnknownState)
	}
	for _, from := range slices.Sorted(maps.Keys(n.transitions)) {
		if _, ok := n.states[from]; !ok {
			return fmt.Errorf("transition source %q: %w", from, ErrUnknownState)
		}
		row := n.transitions[from]
		for _, symbol := range slices.Sorted(maps.Keys(row)) {
			for _, to := range row[symbol] {
				if _, ok := n.states[to]; !ok {
					return fmt.Errorf("transition %s --%s--> %s: %w", from, symbol, to, ErrUnknownState)
				}
			}
		}
	}
	return nil
}

// StartState returns the start state identifier.
func (n *NFA) StartState() string { return n.start }

// States returns all declared state identifiers, sorted.
func (n *NFA) States() []string {
	return slices.Sorted(maps.Keys(n.states))
}

// FinalStates returns the accepting state identifiers, sorted.
func (n *NFA) FinalStates() []string {
	return slices.Sorted(maps.Keys(n.finals))
}

// IsFinal reports whether the named state is accepting.
func (n *NFA) IsFinal(state string) bool {
	_, ok := n.finals[state]
	return ok
}

// StateCount returns the number of declared states.
func (n *NFA) StateCount() int { return len(n.states) }

// Symbols returns the transition symbols defined on the given state, sorted.
func (n *NFA) Symbols(state string) []string {
	return slices.Sorted(maps.Keys(n.transitions[state]))
}

// Targets returns the transition targets for (state, symbol), sorted.
// Absence of a transition yields an empty slice; callers treat absence and
// the empty set as equivalent.
func (n *NFA) Targets(state, symbol string) []string {
	targets := n.transitions[state][symbol]
	if len(targets) == 0 {
		return nil
	}
	out := slices.Clone(targets)
	slices.Sort(out)
	return out
}

// Alphabet returns every non-epsilon symbol in the transition table, sorted.
// This is the symbol set subset construction iterates over.
func (n *NFA) Alphabet() []string {
	seen := make(map[string]struct{})
	for _, row := range n.transitions {
		for symbol := range row {
			if symbol != Epsilon {
				seen[symbol] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

var _ Automaton = (*NFA)(nil)
