package fsm

import (
	"errors"
	"slices"
	"testing"
)

func TestNFAAddState(t *testing.T) {
	n := NewNFA("S0")

	if err := n.AddState("", false); !errors.Is(err, ErrInvalidStateID) {
		t.Errorf("AddState(\"\") = %v, want ErrInvalidStateID", err)
	}

	if err := n.AddState("S0", false); err != nil {
		t.Fatalf("AddState(S0) = %v", err)
	}
	if err := n.AddState("S1", true); err != nil {
		t.Fatalf("AddState(S1) = %v", err)
	}

	// Finality is sticky: re-adding a final state as non-final keeps it final.
	if err := n.AddState("S1", false); err != nil {
		t.Fatalf("AddState(S1, false) = %v", err)
	}
	if !n.IsFinal("S1") {
		t.Error("S1 lost finality after re-add")
	}
	if n.IsFinal("S0") {
		t.Error("S0 reported final")
	}
}

func TestNFAAddTransitionDeduplicates(t *testing.T) {
	n := NewNFA("a")
	for _, s := range []string{"a", "b"} {
		if err := n.AddState(s, false); err != nil {
			t.Fatal(err)
		}
	}

	for range 3 {
		if err := n.AddTransition("a", "x", "b"); err != nil {
			t.Fatal(err)
		}
	}

	if got := n.Targets("a", "x"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Targets(a, x) = %v, want [b]", got)
	}
}

func TestNFAValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *NFA
		wantErr error
	}{
		{
			name:    "Empty",
			build:   func() *NFA { return NewNFA("S0") },
			wantErr: ErrNoStates,
		},
		{
			name: "NoStartState",
			build: func() *NFA {
				n := NewNFA("")
				n.AddState("S0", false)
				return n
			},
			wantErr: ErrNoStartState,
		},
		{
			name: "UndeclaredStartState",
			build: func() *NFA {
				n := NewNFA("S9")
				n.AddState("S0", false)
				return n
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "DanglingTarget",
			build: func() *NFA {
				n := NewNFA("S0")
				n.AddState("S0", false)
				n.AddTransition("S0", "a", "ghost")
				return n
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "DanglingSource",
			build: func() *NFA {
				n := NewNFA("S0")
				n.AddState("S0", false)
				n.AddTransition("ghost", "a", "S0")
				return n
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "ForwardReferenceResolved",
			build: func() *NFA {
				n := NewNFA("S0")
				n.AddState("S0", false)
				n.AddTransition("S0", "a", "S1") // S1 declared after use
				n.AddState("S1", true)
				return n
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNFASortedAccessors(t *testing.T) {
	n := NewNFA("q2")
	for _, s := range []string{"q2", "q0", "q1"} {
		if err := n.AddState(s, s != "q2"); err != nil {
			t.Fatal(err)
		}
	}
	n.AddTransition("q2", "b", "q1")
	n.AddTransition("q2", "a", "q0")
	n.AddTransition("q2", "a", "q2")
	n.AddTransition("q2", Epsilon, "q0")

	if got := n.States(); !slices.Equal(got, []string{"q0", "q1", "q2"}) {
		t.Errorf("States() = %v", got)
	}
	if got := n.FinalStates(); !slices.Equal(got, []string{"q0", "q1"}) {
		t.Errorf("FinalStates() = %v", got)
	}
	if got := n.Symbols("q2"); !slices.Equal(got, []string{"a", "b", Epsilon}) {
		t.Errorf("Symbols(q2) = %v", got)
	}
	if got := n.Targets("q2", "a"); !slices.Equal(got, []string{"q0", "q2"}) {
		t.Errorf("Targets(q2, a) = %v", got)
	}
	if got := n.Targets("q2", "z"); got != nil {
		t.Errorf("Targets(q2, z) = %v, want nil", got)
	}
}

func TestNFAAlphabetExcludesEpsilon(t *testing.T) {
	n := NewNFA("S0")
	n.AddState("S0", false)
	n.AddState("S1", true)
	n.AddTransition("S0", "b", "S1")
	n.AddTransition("S0", Epsilon, "S1")
	n.AddTransition("S1", "a", "S0")

	if got := n.Alphabet(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Alphabet() = %v, want [a b]", got)
	}
}
