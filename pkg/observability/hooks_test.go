package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	layoutStarts int
	lastEngine   string
}

func (h *recordingPipelineHooks) OnLayoutStart(_ context.Context, engine string, _ int) {
	h.layoutStarts++
	h.lastEngine = engine
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic.
	Pipeline().OnLoadStart(ctx, "model.json")
	Pipeline().OnLayoutStart(ctx, "sugiyama", 10)
	Pipeline().OnLayoutComplete(ctx, "sugiyama", time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	API().OnResponse(ctx, "GET", "/api/graphs", 200, time.Millisecond)
}

func TestSetAndResetHooks(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	SetPipelineHooks(ph)
	SetCacheHooks(ch)

	Pipeline().OnLayoutStart(ctx, "graphviz", 3)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "artifact")

	if ph.layoutStarts != 1 || ph.lastEngine != "graphviz" {
		t.Errorf("pipeline hooks not invoked: %+v", ph)
	}
	if ch.hits != 1 || ch.misses != 1 {
		t.Errorf("cache hooks not invoked: %+v", ch)
	}

	Reset()
	Pipeline().OnLayoutStart(ctx, "graphviz", 3)
	if ph.layoutStarts != 1 {
		t.Error("Reset did not restore no-op hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	SetPipelineHooks(nil)

	Pipeline().OnLayoutStart(context.Background(), "sugiyama", 1)
	if ph.layoutStarts != 1 {
		t.Error("SetPipelineHooks(nil) should keep the registered hooks")
	}
}
