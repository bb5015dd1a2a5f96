// Package fsm provides the finite automaton model shared by the whole
// toolkit: the mutable [NFA] and [DFA] builders, the read-only [Automaton]
// view consumed by rendering and serialization, and the canonical epsilon
// handling every input spelling is normalized to.
package fsm

import "errors"

var (
	// ErrInvalidStateID is returned by AddState when the state identifier is
	// empty. All states must have non-empty identifiers.
	ErrInvalidStateID = errors.New("state ID must not be empty")

	// ErrUnknownState is returned by Validate when a transition or the start
	// state references a state that was never declared via AddState.
	ErrUnknownState = errors.New("reference to undeclared state")

	// ErrNoStates is returned by Validate when an automaton has no states.
	ErrNoStates = errors.New("automaton has no states")

	// ErrNoStartState is returned by Validate when the start state is empty.
	ErrNoStartState = errors.New("automaton has no start state")

	// ErrConflictingTransition is returned by [DFA.SetTransition] when a
	// (state, symbol) pair is redefined with a different target. Determinism
	// requires at most one target per pair.
	ErrConflictingTransition = errors.New("conflicting transition target")

	// ErrEpsilonInDFA is returned by [DFA.SetTransition] when the transition
	// symbol is the epsilon marker. DFAs are epsilon-free by construction.
	ErrEpsilonInDFA = errors.New("DFA transitions cannot use epsilon")
)

// Automaton is the read-only view shared by NFA and DFA instances. It is the
// interface consumed by collaborators (rendering, serialization) which must
// never mutate the automaton they observe.
//
// States, FinalStates and Symbols return freshly-allocated slices in sorted
// order so that consumers iterate deterministically regardless of internal
// map layout.
type Automaton interface {
	// StartState returns the identifier of the start state.
	StartState() string

	// States returns all declared state identifiers, sorted.
	States() []string

	// FinalStates returns the accepting state identifiers, sorted.
	FinalStates() []string

	// IsFinal reports whether the named state is accepting.
	IsFinal(state string) bool

	// Symbols returns the transition symbols defined on the given state,
	// sorted. The epsilon marker is included for NFAs that carry epsilon
	// transitions.
	Symbols(state string) []string

	// Targets returns the transition targets for (state, symbol), sorted.
	// A DFA returns at most one target.
	Targets(state, symbol string) []string

	// Alphabet returns every non-epsilon symbol appearing in the transition
	// table, sorted.
	Alphabet() []string
}
