package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// EncodeDFA writes the DFA as an automaton document to w. Output is
// deterministic: "startingState" first, states sorted by name, transition
// symbols sorted within each state. Key order matters for byte-identical
// reruns, and encoding/json sorts only marshaled maps, so the object is
// assembled key by key.
func EncodeDFA(d *fsm.DFA, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	if err := writeField(&buf, 1, startStateKey, d.StartState(), true); err != nil {
		return err
	}

	states := d.States()
	for i, state := range states {
		key, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode state %q: %w", state, err)
		}
		fmt.Fprintf(&buf, "  %s: {\n", key)

		symbols := d.Symbols(state)
		if err := writeField(&buf, 2, finalityKey, d.IsFinal(state), len(symbols) > 0); err != nil {
			return err
		}
		for j, symbol := range symbols {
			target, _ := d.Target(state, symbol)
			if err := writeField(&buf, 2, symbol, target, j < len(symbols)-1); err != nil {
				return err
			}
		}

		buf.WriteString("  }")
		if i < len(states)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// writeField emits one indented `"key": value` line.
func writeField(buf *bytes.Buffer, depth int, key string, value any, comma bool) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	for range depth {
		buf.WriteString("  ")
	}
	buf.Write(k)
	buf.WriteString(": ")
	buf.Write(v)
	if comma {
		buf.WriteString(",")
	}
	buf.WriteString("\n")
	return nil
}

// MarshalDFA returns the DFA document as bytes. Used for cache keys and API
// responses; the bytes are identical to what [EncodeDFA] writes.
func MarshalDFA(d *fsm.DFA) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeDFA(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDFAFile writes the DFA document to path with 0644 permissions,
// closing the file on every exit path.
func WriteDFAFile(d *fsm.DFA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return EncodeDFA(d, f)
}
