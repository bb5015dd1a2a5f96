// Package determinize converts nondeterministic finite automata into
// equivalent deterministic ones via subset construction.
//
// The package exposes the two operators the construction is built from,
// [Closure] (epsilon closure) and [Move], alongside the [Determinize]
// engine itself and an NFA acceptance run ([Accepts]) that simulates the
// automaton directly without building a DFA first.
//
// # Determinism
//
// Two runs over the same NFA produce byte-identical output: the alphabet is
// expanded in lexicographic order, discovered subsets are named S0, S1, …
// in first-discovery order, and subset identity is a canonical bit-set over
// a sorted dense index of NFA states, never a hash-ordered container.
package determinize
