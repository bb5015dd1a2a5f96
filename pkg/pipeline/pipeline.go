// Package pipeline provides the core conversion pipeline for FSMKit.
//
// This package implements the complete decode → determinize → minimize →
// render pipeline used by both the CLI and the API. Centralizing it ensures
// consistent behavior across entry points and one caching policy.
//
// # Architecture
//
// The pipeline consists of up to four stages:
//
//  1. Decode: parse the NFA document and validate state references
//  2. Determinize: subset construction, NFA → DFA
//  3. Minimize: partition refinement, DFA → minimal DFA (optional)
//  4. Render: Graphviz artifacts for any of the automata (optional)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Document: nfaJSON,
//	    Minimize: true,
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dfaDoc := result.DFADocument
//	svg := result.Artifacts["dfa.svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fsmkit/pkg/errors"
	"github.com/matzehuels/fsmkit/pkg/fsm"
)

// Format constants for rendered artifacts.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Stage names used in artifact keys and observability events.
const (
	StageNFA = "nfa"
	StageDFA = "dfa"
	StageMin = "min"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Document is the raw NFA document to convert.
	Document []byte `json:"document"`

	// Minimize also produces the minimal DFA.
	Minimize bool `json:"minimize,omitempty"`

	// Formats lists artifact formats to render ("dot", "svg", "png").
	// Empty means no artifacts; the output documents are always produced.
	Formats []string `json:"formats,omitempty"`

	// RenderNFA also renders the input NFA in each requested format.
	RenderNFA bool `json:"render_nfa,omitempty"`

	// Refresh bypasses the cache and recomputes every stage.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// NFA is the decoded input automaton.
	NFA *fsm.NFA

	// DFA is the automaton produced by subset construction.
	DFA *fsm.DFA

	// Min is the minimized DFA; nil unless Options.Minimize was set.
	Min *fsm.DFA

	// DFADocument is the serialized DFA in the shared document shape.
	DFADocument []byte

	// MinDocument is the serialized minimal DFA; nil unless minimizing.
	MinDocument []byte

	// SourceHash is the content hash of the input document.
	SourceHash string

	// Artifacts contains rendered outputs keyed by "<stage>.<format>",
	// e.g. "dfa.svg" or "min.png".
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NFAStates int
	DFAStates int
	MinStates int

	DecodeTime      time.Duration
	DeterminizeTime time.Duration
	MinimizeTime    time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DeterminizeHit bool // DFA document came from cache
	MinimizeHit    bool // minimal-DFA document came from cache
	RenderHit      bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an artifact format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Document) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// stages returns the automaton stages artifacts are rendered for, in
// pipeline order.
func (o *Options) stages() []string {
	var stages []string
	if o.RenderNFA {
		stages = append(stages, StageNFA)
	}
	stages = append(stages, StageDFA)
	if o.Minimize {
		stages = append(stages, StageMin)
	}
	return stages
}
