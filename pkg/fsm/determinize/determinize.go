package determinize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// builder carries the mutable construction state: the subset-to-name table,
// the FIFO worklist and the fresh-name counter. Keeping it on one struct
// (rather than in package-level variables) makes each Determinize call
// self-contained.
type builder struct {
	nfa      *fsm.NFA
	ix       *index
	dfa      *fsm.DFA
	names    map[string]string // canonical subset key -> DFA state name
	worklist []*bitset.BitSet
	counter  int
}

// Determinize builds a DFA equivalent in accepted language to the given NFA
// using subset construction. The NFA is validated first; a dangling state
// reference aborts the conversion with no partial result.
//
// The DFA's states are epsilon closures of NFA state sets, named S0, S1, …
// in discovery order starting from the closure of the NFA's start state.
// Empty move results produce no transition; the dead state stays implicit.
func Determinize(n *fsm.NFA) (*fsm.DFA, error) {
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("invalid NFA: %w", err)
	}

	b := &builder{
		nfa:   n,
		ix:    newIndex(n),
		dfa:   fsm.NewDFA("S0"),
		names: make(map[string]string),
	}

	seed := b.ix.set([]string{n.StartState()})
	b.ix.closure(n, seed)
	if _, err := b.register(seed); err != nil {
		return nil, err
	}

	alphabet := n.Alphabet()
	processed := make(map[string]bool)

	for len(b.worklist) > 0 {
		current := b.worklist[0]
		b.worklist = b.worklist[1:]

		key := subsetKey(current)
		if processed[key] {
			continue
		}
		processed[key] = true
		currentName := b.names[key]

		for _, symbol := range alphabet {
			destination := b.ix.move(n, current, symbol)
			b.ix.closure(n, destination)
			if destination.Count() == 0 {
				continue
			}
			name, err := b.register(destination)
			if err != nil {
				return nil, err
			}
			if err := b.dfa.SetTransition(currentName, symbol, name); err != nil {
				return nil, err
			}
		}
	}

	return b.dfa, nil
}

// register assigns the next fresh name to a newly discovered subset,
// records its finality and enqueues it for expansion. Known subsets return
// their existing name.
func (b *builder) register(subset *bitset.BitSet) (string, error) {
	key := subsetKey(subset)
	if name, ok := b.names[key]; ok {
		return name, nil
	}
	name := "S" + strconv.Itoa(b.counter)
	b.counter++
	b.names[key] = name
	if err := b.dfa.AddState(name, b.ix.anyFinal(b.nfa, subset)); err != nil {
		return "", err
	}
	b.worklist = append(b.worklist, subset)
	return name, nil
}

// subsetKey renders a bit set as a canonical string of ascending bit
// positions. Two subsets with the same members always produce the same key,
// independent of how the sets were built up.
func subsetKey(b *bitset.BitSet) string {
	var sb strings.Builder
	for pos, ok := b.NextSet(0); ok; pos, ok = b.NextSet(pos + 1) {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(uint64(pos), 10))
	}
	return sb.String()
}
