package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	fsmerrors "github.com/matzehuels/fsmkit/pkg/errors"
	"github.com/matzehuels/fsmkit/pkg/fsm"
)

var (
	// ErrMissingStartState is returned when a document lacks the mandatory
	// "startingState" key. No automaton is constructed.
	ErrMissingStartState = errors.New(`document is missing the "startingState" key`)

	// ErrInvalidTarget is returned when a transition value is neither a
	// state-id string nor a list of state-id strings.
	ErrInvalidTarget = errors.New("transition target must be a string or a list of strings")

	// ErrNondeterministic is returned by DecodeDFA when a document carries a
	// list-valued transition target or an epsilon transition.
	ErrNondeterministic = errors.New("document is not deterministic")
)

// startStateKey is the document's metadata key; every other top-level key
// declares a state.
const startStateKey = "startingState"

// finalityKey marks a state object as accepting.
const finalityKey = "isTerminatingState"

// targets accepts both transition-target shapes: a single state-id string or
// an ordered list of state-id strings.
type targets []string

func (t *targets) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = targets{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return ErrInvalidTarget
	}
	*t = targets(many)
	return nil
}

// DecodeNFA reads one automaton document from r and returns the NFA it
// declares. Transition symbols are epsilon-normalized and duplicate targets
// are dropped. The NFA is validated before it is returned: a transition or
// start-state reference to an undeclared state is a fatal decode error, not
// a silent pass-through.
func DecodeNFA(r io.Reader) (*fsm.NFA, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	startRaw, ok := raw[startStateKey]
	if !ok {
		return nil, ErrMissingStartState
	}
	var start string
	if err := json.Unmarshal(startRaw, &start); err != nil {
		return nil, fmt.Errorf("decode %q: %w", startStateKey, err)
	}

	nfa := fsm.NewNFA(start)
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if name == startStateKey {
			continue
		}
		if err := decodeState(nfa, name, raw[name]); err != nil {
			return nil, err
		}
	}

	if err := nfa.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nfa, nil
}

// decodeState registers one state object: finality first, then each
// transition symbol with its target(s).
func decodeState(nfa *fsm.NFA, name string, data json.RawMessage) error {
	if err := fsmerrors.ValidateStateID(name); err != nil {
		return err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("state %q: %w", name, err)
	}

	final := false
	if finalRaw, ok := obj[finalityKey]; ok {
		if err := json.Unmarshal(finalRaw, &final); err != nil {
			return fmt.Errorf("state %q: %s: %w", name, finalityKey, err)
		}
	}
	if err := nfa.AddState(name, final); err != nil {
		return fmt.Errorf("state %q: %w", name, err)
	}

	for _, symbol := range slices.Sorted(maps.Keys(obj)) {
		if symbol == finalityKey {
			continue
		}
		var to targets
		if err := json.Unmarshal(obj[symbol], &to); err != nil {
			return fmt.Errorf("state %q, symbol %q: %w", name, symbol, err)
		}
		canonical := fsm.NormalizeSymbol(symbol)
		for _, target := range to {
			if err := nfa.AddTransition(name, canonical, target); err != nil {
				return fmt.Errorf("state %q, symbol %q: %w", name, symbol, err)
			}
		}
	}
	return nil
}

// DecodeDFA reads a document that must already be deterministic: every
// transition value a single state-id string and no epsilon symbols under any
// spelling. It is the input side of minimization when a DFA document is
// loaded directly rather than produced by subset construction.
func DecodeDFA(r io.Reader) (*fsm.DFA, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	startRaw, ok := raw[startStateKey]
	if !ok {
		return nil, ErrMissingStartState
	}
	var start string
	if err := json.Unmarshal(startRaw, &start); err != nil {
		return nil, fmt.Errorf("decode %q: %w", startStateKey, err)
	}

	dfa := fsm.NewDFA(start)
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if name == startStateKey {
			continue
		}
		if err := fsmerrors.ValidateStateID(name); err != nil {
			return nil, err
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw[name], &obj); err != nil {
			return nil, fmt.Errorf("state %q: %w", name, err)
		}

		final := false
		if finalRaw, ok := obj[finalityKey]; ok {
			if err := json.Unmarshal(finalRaw, &final); err != nil {
				return nil, fmt.Errorf("state %q: %s: %w", name, finalityKey, err)
			}
		}
		if err := dfa.AddState(name, final); err != nil {
			return nil, fmt.Errorf("state %q: %w", name, err)
		}

		for _, symbol := range slices.Sorted(maps.Keys(obj)) {
			if symbol == finalityKey {
				continue
			}
			if fsm.IsEpsilon(symbol) {
				return nil, fmt.Errorf("state %q, symbol %q: %w", name, symbol, ErrNondeterministic)
			}
			var target string
			if err := json.Unmarshal(obj[symbol], &target); err != nil {
				return nil, fmt.Errorf("state %q, symbol %q: %w", name, symbol, ErrNondeterministic)
			}
			if err := dfa.SetTransition(name, symbol, target); err != nil {
				return nil, fmt.Errorf("state %q, symbol %q: %w", name, symbol, err)
			}
		}
	}

	if err := dfa.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return dfa, nil
}

// ReadNFAFile opens path, decodes it with [DecodeNFA] and closes the file on
// every exit path. A missing file surfaces as the open error, wrapped with
// the path for context.
func ReadNFAFile(path string) (*fsm.NFA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeNFA(f)
}

// ReadDFAFile opens path, decodes it with [DecodeDFA] and closes the file on
// every exit path.
func ReadDFAFile(path string) (*fsm.DFA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeDFA(f)
}
