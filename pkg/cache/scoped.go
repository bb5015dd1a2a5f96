package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The API server uses this to keep per-deployment namespaces separate when
// several instances share one Redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AutomatonKey generates a prefixed key for converted automaton documents.
func (k *ScopedKeyer) AutomatonKey(sourceHash string, opts AutomatonKeyOpts) string {
	return k.prefix + k.inner.AutomatonKey(sourceHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(automatonHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(automatonHash, opts)
}
