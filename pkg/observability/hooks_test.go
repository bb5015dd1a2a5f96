package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	determinizeStarts    int
	determinizeCompletes int
}

func (h *recordingPipelineHooks) OnDeterminizeStart(ctx context.Context, nfaStates int) {
	h.determinizeStarts++
}

func (h *recordingPipelineHooks) OnDeterminizeComplete(ctx context.Context, dfaStates int, d time.Duration, err error) {
	h.determinizeCompletes++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string)       { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(ctx context.Context, keyType string)      { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(ctx context.Context, keyType string, n int) { h.sets++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic
	ctx := context.Background()
	Pipeline().OnDecodeStart(ctx, "test")
	Pipeline().OnDeterminizeComplete(ctx, 3, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "automaton")
	Cache().OnCacheSet(ctx, "artifact", 1024)
}

func TestSetPipelineHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnDeterminizeStart(ctx, 4)
	Pipeline().OnDeterminizeComplete(ctx, 3, time.Millisecond, nil)
	Pipeline().OnDeterminizeComplete(ctx, 3, time.Millisecond, nil)

	if h.determinizeStarts != 1 {
		t.Errorf("determinizeStarts = %d, want 1", h.determinizeStarts)
	}
	if h.determinizeCompletes != 2 {
		t.Errorf("determinizeCompletes = %d, want 2", h.determinizeCompletes)
	}
}

func TestSetCacheHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	ctx := context.Background()
	Cache().OnCacheMiss(ctx, "automaton")
	Cache().OnCacheSet(ctx, "automaton", 128)
	Cache().OnCacheHit(ctx, "automaton")

	if h.hits != 1 || h.misses != 1 || h.sets != 1 {
		t.Errorf("hits/misses/sets = %d/%d/%d, want 1/1/1", h.hits, h.misses, h.sets)
	}
}

func TestSetNilHooksIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	SetPipelineHooks(nil)
	SetCacheHooks(nil)

	if Pipeline() == nil {
		t.Error("Pipeline() should never be nil")
	}
	if Cache() == nil {
		t.Error("Cache() should never be nil")
	}
}
