package fsm

import (
	"errors"
	"slices"
	"testing"
)

func TestDFASetTransition(t *testing.T) {
	d := NewDFA("S0")
	for _, s := range []string{"S0", "S1"} {
		if err := d.AddState(s, false); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.SetTransition("S0", "a", "S1"); err != nil {
		t.Fatalf("SetTransition = %v", err)
	}

	// Same target again is a no-op.
	if err := d.SetTransition("S0", "a", "S1"); err != nil {
		t.Fatalf("idempotent SetTransition = %v", err)
	}

	// Different target for the same pair is a determinism violation.
	if err := d.SetTransition("S0", "a", "S0"); !errors.Is(err, ErrConflictingTransition) {
		t.Errorf("conflicting SetTransition = %v, want ErrConflictingTransition", err)
	}

	if err := d.SetTransition("S0", Epsilon, "S1"); !errors.Is(err, ErrEpsilonInDFA) {
		t.Errorf("epsilon SetTransition = %v, want ErrEpsilonInDFA", err)
	}
}

func TestDFATarget(t *testing.T) {
	d := NewDFA("S0")
	d.AddState("S0", false)
	d.AddState("S1", true)
	d.SetTransition("S0", "a", "S1")

	if to, ok := d.Target("S0", "a"); !ok || to != "S1" {
		t.Errorf("Target(S0, a) = %q, %v", to, ok)
	}
	if _, ok := d.Target("S0", "b"); ok {
		t.Error("Target(S0, b) defined, want implicit dead state")
	}

	if got := d.Targets("S0", "a"); !slices.Equal(got, []string{"S1"}) {
		t.Errorf("Targets(S0, a) = %v", got)
	}
	if got := d.Targets("S0", "b"); got != nil {
		t.Errorf("Targets(S0, b) = %v, want nil", got)
	}
}

func TestDFAValidate(t *testing.T) {
	d := NewDFA("S0")
	if err := d.Validate(); !errors.Is(err, ErrNoStates) {
		t.Errorf("empty Validate() = %v, want ErrNoStates", err)
	}

	d.AddState("S0", false)
	d.AddState("S1", true)
	d.SetTransition("S0", "a", "S1")
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	d.SetTransition("S1", "b", "ghost")
	if err := d.Validate(); !errors.Is(err, ErrUnknownState) {
		t.Errorf("dangling Validate() = %v, want ErrUnknownState", err)
	}
}

// Even-number-of-a's machine: two states, both symbols defined everywhere.
func evenAs(t *testing.T) *DFA {
	t.Helper()
	d := NewDFA("even")
	d.AddState("even", true)
	d.AddState("odd", false)
	d.SetTransition("even", "a", "odd")
	d.SetTransition("odd", "a", "even")
	d.SetTransition("even", "b", "even")
	d.SetTransition("odd", "b", "odd")
	return d
}

func TestDFAAccepts(t *testing.T) {
	d := evenAs(t)

	tests := []struct {
		input []string
		want  bool
	}{
		{nil, true},
		{[]string{"a"}, false},
		{[]string{"a", "a"}, true},
		{[]string{"b", "b", "b"}, true},
		{[]string{"a", "b", "a"}, true},
		{[]string{"a", "b"}, false},
		{[]string{"c"}, false}, // undefined symbol rejects
	}

	for _, tt := range tests {
		if got := d.Accepts(tt.input); got != tt.want {
			t.Errorf("Accepts(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDFAAlphabet(t *testing.T) {
	d := evenAs(t)
	if got := d.Alphabet(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Alphabet() = %v, want [a b]", got)
	}
}
