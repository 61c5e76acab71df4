package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "boxes.json")
	p.OnLoadComplete(ctx, "boxes.json", 10, time.Second, nil)
	p.OnLayoutStart(ctx, 10)
	p.OnLayoutComplete(ctx, 9, 1, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	pl := NoopPlacementHooks{}
	pl.OnPlace(ctx, 3, "right", time.Millisecond)
	pl.OnUnplaceable(ctx, 10, 20)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)
}

func TestOTelHooksWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	h := OTelHooks{}
	h.OnLoadStart(ctx, "boxes.json")
	h.OnLoadComplete(ctx, "boxes.json", 3, time.Millisecond, errors.New("boom"))
	h.OnLayoutStart(ctx, 3)
	h.OnLayoutComplete(ctx, 3, 0, time.Millisecond, nil)
	h.OnRenderStart(ctx, []string{"svg", "png"})
	h.OnRenderComplete(ctx, []string{"svg", "png"}, time.Millisecond, nil)
	h.OnPlace(ctx, 0, "right", time.Microsecond)
	h.OnUnplaceable(ctx, 1, 1)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 10)
	EndSpan(span, errors.New("failed"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Placement().(NoopPlacementHooks); !ok {
		t.Error("Placement() should return NoopPlacementHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customPlacement := &testPlacementHooks{}
	SetPlacementHooks(customPlacement)
	if Placement() != customPlacement {
		t.Error("SetPlacementHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}

	RegisterOTel()
	if _, ok := Placement().(OTelHooks); !ok {
		t.Error("RegisterOTel() should install OTelHooks")
	}
	Reset()
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testPlacementHooks struct{ NoopPlacementHooks }
type testCacheHooks struct{ NoopCacheHooks }
