// Package document implements the JSON contract shared by NFA input and
// DFA output:
//
//	{
//	  "startingState": "S0",
//	  "S0": { "isTerminatingState": false, "a": ["S0", "S1"] },
//	  "S1": { "isTerminatingState": true, "b": "S0" }
//	}
//
// Every key except "startingState" declares one state. Inside a state
// object, "isTerminatingState" marks finality (absent means false) and every
// other key is a transition symbol whose value is a single target state or a
// list of targets. Epsilon symbols are recognized under all their spellings
// (see [fsm.IsEpsilon]) and normalized here, exactly once, at the decode
// boundary.
//
// Output is deterministic: "startingState" first, then states sorted by
// name, with each state's transition symbols sorted. DFAs are epsilon-free,
// so the encoder never needs to choose an epsilon spelling.
package document
