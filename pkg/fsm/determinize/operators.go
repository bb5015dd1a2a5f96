package determinize

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// index maps NFA state identifiers to dense bit positions. States are
// numbered in sorted-name order so that bit sets built from the same NFA are
// comparable across runs regardless of map iteration order.
type index struct {
	position map[string]uint
	names    []string
}

func newIndex(n *fsm.NFA) *index {
	names := n.States()
	ix := &index{
		position: make(map[string]uint, len(names)),
		names:    names,
	}
	for i, name := range names {
		ix.position[name] = uint(i)
	}
	return ix
}

// set builds a bit set from state identifiers. Unknown identifiers are
// ignored; Validate has already rejected dangling references by the time
// the engine runs.
func (ix *index) set(states []string) *bitset.BitSet {
	b := bitset.New(uint(len(ix.names)))
	for _, s := range states {
		if pos, ok := ix.position[s]; ok {
			b.Set(pos)
		}
	}
	return b
}

// slice converts a bit set back to sorted state identifiers.
func (ix *index) slice(b *bitset.BitSet) []string {
	out := make([]string, 0, b.Count())
	for pos, ok := b.NextSet(0); ok; pos, ok = b.NextSet(pos + 1) {
		out = append(out, ix.names[pos])
	}
	return out
}

// closure expands b in place to its epsilon closure using a depth-first
// worklist. The result set grows monotonically and is bounded by the state
// count, so the loop terminates; traversal order does not affect the result.
func (ix *index) closure(n *fsm.NFA, b *bitset.BitSet) {
	stack := make([]string, 0, b.Count())
	for pos, ok := b.NextSet(0); ok; pos, ok = b.NextSet(pos + 1) {
		stack = append(stack, ix.names[pos])
	}
	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range n.Targets(state, fsm.Epsilon) {
			pos, ok := ix.position[next]
			if !ok || b.Test(pos) {
				continue
			}
			b.Set(pos)
			stack = append(stack, next)
		}
	}
}

// move returns the set of states reachable from b by consuming symbol.
func (ix *index) move(n *fsm.NFA, b *bitset.BitSet, symbol string) *bitset.BitSet {
	out := bitset.New(uint(len(ix.names)))
	for pos, ok := b.NextSet(0); ok; pos, ok = b.NextSet(pos + 1) {
		for _, target := range n.Targets(ix.names[pos], symbol) {
			if tp, ok := ix.position[target]; ok {
				out.Set(tp)
			}
		}
	}
	return out
}

// anyFinal reports whether any member of b is an accepting NFA state.
func (ix *index) anyFinal(n *fsm.NFA, b *bitset.BitSet) bool {
	for pos, ok := b.NextSet(0); ok; pos, ok = b.NextSet(pos + 1) {
		if n.IsFinal(ix.names[pos]) {
			return true
		}
	}
	return false
}

// Closure computes the epsilon closure of a set of NFA states: the smallest
// superset of states closed under epsilon transitions. The input is not
// modified and the result is sorted, so the operation is order-independent
// and idempotent.
func Closure(n *fsm.NFA, states []string) []string {
	ix := newIndex(n)
	b := ix.set(states)
	ix.closure(n, b)
	return ix.slice(b)
}

// Move computes the union of transition targets for one non-epsilon symbol
// over a set of NFA states. States without a transition on the symbol
// contribute nothing. Move is pure: the automaton and the input set are
// never mutated, and an empty result is returned as an empty slice.
func Move(n *fsm.NFA, states []string, symbol string) []string {
	ix := newIndex(n)
	return ix.slice(ix.move(n, ix.set(states), symbol))
}

// Accepts simulates the NFA on the input symbol sequence: the current state
// set starts as the closure of the start state and is advanced by
// move-then-closure per symbol. The input is accepted when the final set
// contains an accepting state.
func Accepts(n *fsm.NFA, input []string) bool {
	ix := newIndex(n)
	current := ix.set([]string{n.StartState()})
	ix.closure(n, current)
	for _, symbol := range input {
		current = ix.move(n, current, symbol)
		ix.closure(n, current)
		if current.Count() == 0 {
			return false
		}
	}
	return ix.anyFinal(n, current)
}
