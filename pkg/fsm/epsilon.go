package fsm

import "strings"

// Epsilon is the canonical internal marker for the empty-input transition
// symbol. Every accepted surface spelling is rewritten to this marker at the
// deserialization boundary; the algorithms downstream compare against it
// exclusively and never re-check the surface spellings.
const Epsilon = "ε"

// epsilonMojibake is the UTF-8 encoding of ε re-decoded as Latin-1, a
// corruption that shows up in documents produced by misconfigured editors.
const epsilonMojibake = "Îµ"

// IsEpsilon reports whether the symbol is one of the recognized epsilon
// spellings: the empty string, "epsilon" in any letter case, the Greek
// letter ε, or its known mis-encoded byte sequence.
func IsEpsilon(symbol string) bool {
	switch {
	case symbol == "":
		return true
	case symbol == Epsilon:
		return true
	case symbol == epsilonMojibake:
		return true
	case strings.EqualFold(symbol, "epsilon"):
		return true
	}
	return false
}

// NormalizeSymbol maps every epsilon spelling to the canonical [Epsilon]
// marker and returns any other symbol unchanged. Deserialization calls this
// exactly once per transition symbol; constructed automata are expected to
// already use the canonical marker.
func NormalizeSymbol(symbol string) string {
	if IsEpsilon(symbol) {
		return Epsilon
	}
	return symbol
}
