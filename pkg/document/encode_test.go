package document

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/fsmkit/pkg/fsm"
)

func sampleDFA(t *testing.T) *fsm.DFA {
	t.Helper()
	d := fsm.NewDFA("S0")
	for _, s := range []string{"S0", "S1", "S2"} {
		if err := d.AddState(s, s == "S2"); err != nil {
			t.Fatal(err)
		}
	}
	d.SetTransition("S0", "a", "S1")
	d.SetTransition("S1", "b", "S2")
	d.SetTransition("S1", "a", "S1")
	return d
}

func TestEncodeDFAOrdering(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeDFA(sampleDFA(t), &buf); err != nil {
		t.Fatalf("EncodeDFA() = %v", err)
	}

	want := `{
  "startingState": "S0",
  "S0": {
    "isTerminatingState": false,
    "a": "S1"
  },
  "S1": {
    "isTerminatingState": false,
    "a": "S1",
    "b": "S2"
  },
  "S2": {
    "isTerminatingState": true
  }
}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeDFA() output:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeDFAByteIdentical(t *testing.T) {
	d := sampleDFA(t)

	first, err := MarshalDFA(d)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := MarshalDFA(d)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("MarshalDFA() output varies between calls")
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := sampleDFA(t)

	data, err := MarshalDFA(d)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeDFA(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeDFA() = %v", err)
	}

	if decoded.StartState() != d.StartState() {
		t.Errorf("StartState() = %q", decoded.StartState())
	}
	if !slices.Equal(decoded.States(), d.States()) {
		t.Errorf("States() = %v", decoded.States())
	}
	if !slices.Equal(decoded.FinalStates(), d.FinalStates()) {
		t.Errorf("FinalStates() = %v", decoded.FinalStates())
	}
	for _, s := range d.States() {
		for _, sym := range d.Symbols(s) {
			want, _ := d.Target(s, sym)
			got, ok := decoded.Target(s, sym)
			if !ok || got != want {
				t.Errorf("Target(%s, %s) = %q, want %q", s, sym, got, want)
			}
		}
	}
}

func TestEncodeDFAEscapesKeys(t *testing.T) {
	d := fsm.NewDFA(`st"art`)
	if err := d.AddState(`st"art`, true); err != nil {
		t.Fatal(err)
	}

	data, err := MarshalDFA(d)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeDFA(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeDFA() = %v", err)
	}
	if decoded.StartState() != `st"art` {
		t.Errorf("StartState() = %q", decoded.StartState())
	}
}

func TestWriteAndReadDFAFile(t *testing.T) {
	d := sampleDFA(t)
	path := filepath.Join(t.TempDir(), "out.dfa.json")

	if err := WriteDFAFile(d, path); err != nil {
		t.Fatalf("WriteDFAFile() = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("written file is empty")
	}

	decoded, err := ReadDFAFile(path)
	if err != nil {
		t.Fatalf("ReadDFAFile() = %v", err)
	}
	if !slices.Equal(decoded.States(), d.States()) {
		t.Errorf("States() = %v", decoded.States())
	}
}
