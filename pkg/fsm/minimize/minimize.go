// Package minimize reduces deterministic finite automata to their minimal
// equivalents under Moore-style partition refinement.
//
// The partition starts as {final states, non-final states} and is split
// until no group can be split further; each surviving group becomes one
// state of the rebuilt DFA. The result accepts exactly the language of its
// source, never has more states, and minimizing an already-minimal DFA
// yields an isomorphic automaton.
package minimize

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// noGroup is the sentinel partition index for a state with no transition on
// a symbol. Two states that both lack a transition on the same symbol agree
// on that symbol; this deliberately merges partially-defined states whose
// remaining transitions are equivalent, matching the implicit-dead-state
// reading where every absent transition leads to the same rejecting sink.
const noGroup = -1

// Minimize rebuilds the DFA over the equivalence classes of its states.
// The input is validated first and never mutated; the result is a wholly new
// automaton with states named S0, S1, … in group discovery order.
func Minimize(d *fsm.DFA) (*fsm.DFA, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid DFA: %w", err)
	}

	alphabet := d.Alphabet()
	partition := seedPartition(d)

	for {
		next, split := refine(d, partition, alphabet)
		partition = next
		if !split {
			break
		}
	}

	return rebuild(d, partition)
}

// seedPartition builds the initial {non-final, final} partition. Groups hold
// sorted state identifiers; an empty group is omitted entirely.
func seedPartition(d *fsm.DFA) [][]string {
	var finals, nonFinals []string
	for _, state := range d.States() {
		if d.IsFinal(state) {
			finals = append(finals, state)
		} else {
			nonFinals = append(nonFinals, state)
		}
	}
	var partition [][]string
	if len(nonFinals) > 0 {
		partition = append(partition, nonFinals)
	}
	if len(finals) > 0 {
		partition = append(partition, finals)
	}
	return partition
}

// refine performs one full pass over the partition, splitting each group
// into members that agree with the group's first state on every symbol and
// members that do not. All groupIndex lookups are made against the partition
// as it stood at the start of the pass, so every comparison in one pass uses
// the same equivalence test.
func refine(d *fsm.DFA, partition [][]string, alphabet []string) ([][]string, bool) {
	var next [][]string
	split := false

	for _, group := range partition {
		if len(group) <= 1 {
			next = append(next, group)
			continue
		}

		representative := group[0]
		matching := []string{representative}
		var rest []string

		for _, state := range group[1:] {
			if agrees(d, partition, representative, state, alphabet) {
				matching = append(matching, state)
			} else {
				rest = append(rest, state)
			}
		}

		if len(rest) > 0 {
			next = append(next, matching, rest)
			split = true
		} else {
			next = append(next, group)
		}
	}

	return next, split
}

// agrees reports whether two states land in the same partition group for
// every alphabet symbol. A missing transition maps to the noGroup sentinel.
func agrees(d *fsm.DFA, partition [][]string, a, b string, alphabet []string) bool {
	for _, symbol := range alphabet {
		if targetGroup(d, partition, a, symbol) != targetGroup(d, partition, b, symbol) {
			return false
		}
	}
	return true
}

// targetGroup returns the partition index of state's target on symbol, or
// noGroup when the transition is absent.
func targetGroup(d *fsm.DFA, partition [][]string, state, symbol string) int {
	target, ok := d.Target(state, symbol)
	if !ok {
		return noGroup
	}
	return groupIndex(partition, target)
}

// groupIndex returns the index of the group containing state, or noGroup if
// the state appears in no group.
func groupIndex(partition [][]string, state string) int {
	for i, group := range partition {
		for _, member := range group {
			if member == state {
				return i
			}
		}
	}
	return noGroup
}

// rebuild constructs the minimal DFA from a stable partition. Each group
// becomes one state; transitions are reconstructed once per group from its
// first member, and a transition whose target is in no group is dropped
// rather than treated as an error.
func rebuild(d *fsm.DFA, partition [][]string) (*fsm.DFA, error) {
	groupName := make(map[string]string, d.StateCount())
	start := ""

	for i, group := range partition {
		name := "S" + strconv.Itoa(i)
		for _, state := range group {
			groupName[state] = name
			if state == d.StartState() {
				start = name
			}
		}
	}

	min := fsm.NewDFA(start)
	for i, group := range partition {
		name := "S" + strconv.Itoa(i)
		final := false
		for _, state := range group {
			if d.IsFinal(state) {
				final = true
				break
			}
		}
		if err := min.AddState(name, final); err != nil {
			return nil, err
		}
	}

	for _, group := range partition {
		representative := group[0]
		from := groupName[representative]
		for _, symbol := range d.Symbols(representative) {
			target, ok := d.Target(representative, symbol)
			if !ok {
				continue
			}
			to, ok := groupName[target]
			if !ok {
				continue
			}
			if err := min.SetTransition(from, symbol, to); err != nil {
				return nil, err
			}
		}
	}

	return min, nil
}
