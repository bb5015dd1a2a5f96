// Package cache provides content-addressed caching for pipeline results.
//
// The [Cache] interface is implemented by [FileCache] (local CLI runs),
// [RedisCache] (shared deployments) and [NullCache] (caching disabled).
// Keys are generated by a [Keyer] from content hashes plus the options that
// influenced the result, so a changed input or option never serves a stale
// artifact.
package cache

import (
	"context"
	"time"
)

// TTLs per cached stage. Conversion results are pure functions of their
// input document and could live forever; they still expire so that cache
// directories do not grow without bound.
const (
	// TTLAutomaton is the lifetime of cached DFA / minimal-DFA documents.
	TTLAutomaton = 30 * 24 * time.Hour

	// TTLArtifact is the lifetime of rendered artifacts (DOT, SVG, PNG).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry TTL.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// AutomatonKeyOpts are the options that distinguish cached conversion
// results computed from the same input document.
type AutomatonKeyOpts struct {
	// Minimized selects between the subset-construction DFA and its
	// minimized equivalent.
	Minimized bool
}

// ArtifactKeyOpts are the options that distinguish rendered artifacts
// computed from the same automaton.
type ArtifactKeyOpts struct {
	Format string // "dot", "svg" or "png"

	// Stage names which automaton was rendered ("nfa", "dfa", "min").
	Stage string
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// AutomatonKey keys a converted automaton document by the content hash
	// of its canonical source document.
	AutomatonKey(sourceHash string, opts AutomatonKeyOpts) string

	// ArtifactKey keys a rendered artifact by the content hash of the
	// automaton document it was rendered from.
	ArtifactKey(automatonHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the inputs and options into prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// AutomatonKey generates a key for a converted automaton document.
func (k *DefaultKeyer) AutomatonKey(sourceHash string, opts AutomatonKeyOpts) string {
	return hashKey("automaton", sourceHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(automatonHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", automatonHash, opts)
}
