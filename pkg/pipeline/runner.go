package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fsmkit/pkg/cache"
	"github.com/matzehuels/fsmkit/pkg/document"
	"github.com/matzehuels/fsmkit/pkg/errors"
	"github.com/matzehuels/fsmkit/pkg/fsm"
	"github.com/matzehuels/fsmkit/pkg/fsm/determinize"
	"github.com/matzehuels/fsmkit/pkg/fsm/minimize"
	"github.com/matzehuels/fsmkit/pkg/observability"
	"github.com/matzehuels/fsmkit/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → determinize → minimize → render
// pipeline with caching. Structural errors abort the run with no partial
// output documents; render failures are surfaced but only after the
// documents have been produced, so a broken Graphviz install cannot corrupt
// a conversion.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		SourceHash: cache.Hash(opts.Document),
		Artifacts:  make(map[string][]byte),
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	observability.Pipeline().OnDecodeStart(ctx, result.SourceHash)
	nfa, err := r.Decode(ctx, opts)
	result.Stats.DecodeTime = time.Since(decodeStart)
	if err != nil {
		observability.Pipeline().OnDecodeComplete(ctx, result.SourceHash, 0, result.Stats.DecodeTime, err)
		return nil, err
	}
	result.NFA = nfa
	result.Stats.NFAStates = nfa.StateCount()
	observability.Pipeline().OnDecodeComplete(ctx, result.SourceHash, nfa.StateCount(), result.Stats.DecodeTime, nil)

	opts.Logger.Info("decoded NFA",
		"states", nfa.StateCount(),
		"alphabet", len(nfa.Alphabet()),
		"duration", result.Stats.DecodeTime)

	// Stage 2: Determinize
	determinizeStart := time.Now()
	observability.Pipeline().OnDeterminizeStart(ctx, nfa.StateCount())
	dfa, dfaDoc, dfaHit, err := r.determinize(ctx, nfa, result.SourceHash, opts)
	result.Stats.DeterminizeTime = time.Since(determinizeStart)
	observability.Pipeline().OnDeterminizeComplete(ctx, stateCount(dfa), result.Stats.DeterminizeTime, err)
	if err != nil {
		return nil, err
	}
	result.DFA = dfa
	result.DFADocument = dfaDoc
	result.Stats.DFAStates = dfa.StateCount()
	result.CacheInfo.DeterminizeHit = dfaHit

	opts.Logger.Info("determinized",
		"states", dfa.StateCount(),
		"cached", dfaHit,
		"duration", result.Stats.DeterminizeTime)

	// Stage 3: Minimize
	if opts.Minimize {
		minimizeStart := time.Now()
		observability.Pipeline().OnMinimizeStart(ctx, dfa.StateCount())
		min, minDoc, minHit, err := r.minimize(ctx, dfa, result.SourceHash, opts)
		result.Stats.MinimizeTime = time.Since(minimizeStart)
		observability.Pipeline().OnMinimizeComplete(ctx, stateCount(min), result.Stats.MinimizeTime, err)
		if err != nil {
			return nil, err
		}
		result.Min = min
		result.MinDocument = minDoc
		result.Stats.MinStates = min.StateCount()
		result.CacheInfo.MinimizeHit = minHit

		opts.Logger.Info("minimized",
			"states", min.StateCount(),
			"cached", minHit,
			"duration", result.Stats.MinimizeTime)
	}

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		observability.Pipeline().OnRenderStart(ctx, opts.Formats)
		artifacts, renderHit, err := r.renderStages(ctx, result, opts)
		result.Stats.RenderTime = time.Since(renderStart)
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.CacheInfo.RenderHit = renderHit

		opts.Logger.Info("rendered artifacts",
			"formats", opts.Formats,
			"cached", renderHit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Decode parses and validates the NFA document, mapping structural failures
// to their machine-readable error codes.
func (r *Runner) Decode(ctx context.Context, opts Options) (*fsm.NFA, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	nfa, err := document.DecodeNFA(bytes.NewReader(opts.Document))
	if err != nil {
		return nil, decodeError(err)
	}
	return nfa, nil
}

// determinize runs subset construction with caching. The cached value is the
// serialized DFA document keyed by the source document's content hash.
func (r *Runner) determinize(ctx context.Context, nfa *fsm.NFA, sourceHash string, opts Options) (*fsm.DFA, []byte, bool, error) {
	key := r.Keyer.AutomatonKey(sourceHash, cache.AutomatonKeyOpts{Minimized: false})

	if !opts.Refresh {
		if doc, ok := r.cachedDFA(ctx, key); ok {
			dfa, err := document.DecodeDFA(bytes.NewReader(doc))
			if err == nil {
				return dfa, doc, true, nil
			}
			// Corrupt cache entry; fall through to recompute.
		}
	}

	dfa, err := determinize.Determinize(nfa)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "subset construction failed")
	}
	doc, err := document.MarshalDFA(dfa)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize DFA")
	}
	r.store(ctx, key, "automaton", doc, cache.TTLAutomaton)
	return dfa, doc, false, nil
}

// minimize runs partition refinement with caching, keyed by the same source
// hash so both conversion outputs invalidate together.
func (r *Runner) minimize(ctx context.Context, dfa *fsm.DFA, sourceHash string, opts Options) (*fsm.DFA, []byte, bool, error) {
	key := r.Keyer.AutomatonKey(sourceHash, cache.AutomatonKeyOpts{Minimized: true})

	if !opts.Refresh {
		if doc, ok := r.cachedDFA(ctx, key); ok {
			min, err := document.DecodeDFA(bytes.NewReader(doc))
			if err == nil {
				return min, doc, true, nil
			}
		}
	}

	min, err := minimize.Minimize(dfa)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "minimization failed")
	}
	doc, err := document.MarshalDFA(min)
	if err != nil {
		return nil, nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize minimal DFA")
	}
	r.store(ctx, key, "automaton", doc, cache.TTLAutomaton)
	return min, doc, false, nil
}

// MinimizeDFA minimizes an automaton that is already deterministic, outside
// the document pipeline. Caching is keyed by the DFA's own serialized form.
func (r *Runner) MinimizeDFA(ctx context.Context, dfa *fsm.DFA) (*fsm.DFA, error) {
	doc, err := document.MarshalDFA(dfa)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize DFA")
	}
	min, _, _, err := r.minimize(ctx, dfa, cache.Hash(doc), Options{})
	return min, err
}

// renderStages renders every requested format for every stage the options
// select, reading from the artifact cache where possible.
func (r *Runner) renderStages(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	type target struct {
		stage     string
		automaton fsm.Automaton
		hash      string
	}

	var targets []target
	for _, stage := range opts.stages() {
		switch stage {
		case StageNFA:
			targets = append(targets, target{StageNFA, result.NFA, result.SourceHash})
		case StageDFA:
			targets = append(targets, target{StageDFA, result.DFA, cache.Hash(result.DFADocument)})
		case StageMin:
			targets = append(targets, target{StageMin, result.Min, cache.Hash(result.MinDocument)})
		}
	}

	artifacts := make(map[string][]byte)
	allCached := true

	for _, tgt := range targets {
		for _, format := range opts.Formats {
			name := tgt.stage + "." + format
			key := r.Keyer.ArtifactKey(tgt.hash, cache.ArtifactKeyOpts{Format: format, Stage: tgt.stage})

			if !opts.Refresh {
				if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
					observability.Cache().OnCacheHit(ctx, "artifact")
					artifacts[name] = data
					continue
				}
				observability.Cache().OnCacheMiss(ctx, "artifact")
			}
			allCached = false

			data, err := renderArtifact(ctx, tgt.automaton, format)
			if err != nil {
				return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", name)
			}
			artifacts[name] = data
			r.store(ctx, key, "artifact", data, cache.TTLArtifact)
		}
	}

	return artifacts, allCached, nil
}

// renderArtifact produces one artifact format for one automaton.
func renderArtifact(ctx context.Context, a fsm.Automaton, format string) ([]byte, error) {
	dot := render.ToDOT(a)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return render.RenderSVG(ctx, dot)
	case FormatPNG:
		return render.RenderPNG(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}

// cachedDFA fetches a cached document, reporting hit/miss to the hooks.
func (r *Runner) cachedDFA(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "automaton")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "automaton")
	return data, true
}

// store writes to the cache, ignoring failures: a broken cache degrades
// performance, never correctness.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// stateCount tolerates a nil automaton for error-path hook reporting.
func stateCount(d *fsm.DFA) int {
	if d == nil {
		return 0
	}
	return d.StateCount()
}

// decodeError maps document/model failures to coded errors.
func decodeError(err error) error {
	switch {
	case stderrors.Is(err, document.ErrMissingStartState):
		return errors.Wrap(errors.ErrCodeMissingStartState, err, "invalid document")
	case stderrors.Is(err, fsm.ErrUnknownState):
		return errors.Wrap(errors.ErrCodeDanglingState, err, "invalid document")
	case stderrors.Is(err, fsm.ErrNoStates), stderrors.Is(err, fsm.ErrNoStartState):
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid document")
	default:
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
}
