package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for all pinwheel spans.
const TracerName = "github.com/matzehuels/pinwheel"

// StartSpan starts a span named name with the global tracer provider.
// Without a configured provider the span is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// OTelHooks records hook events as events on the span active in the context.
// It implements PipelineHooks, PlacementHooks and CacheHooks.
type OTelHooks struct{}

func event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func withErr(attrs []attribute.KeyValue, err error) []attribute.KeyValue {
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	return attrs
}

func (OTelHooks) OnLoadStart(ctx context.Context, source string) {
	event(ctx, "load.start", attribute.String("source", source))
}

func (OTelHooks) OnLoadComplete(ctx context.Context, source string, boxCount int, d time.Duration, err error) {
	event(ctx, "load.complete", withErr([]attribute.KeyValue{
		attribute.String("source", source),
		attribute.Int("boxes", boxCount),
		attribute.Int64("duration_ms", d.Milliseconds()),
	}, err)...)
}

func (OTelHooks) OnLayoutStart(ctx context.Context, boxCount int) {
	event(ctx, "layout.start", attribute.Int("boxes", boxCount))
}

func (OTelHooks) OnLayoutComplete(ctx context.Context, placed, skipped int, d time.Duration, err error) {
	event(ctx, "layout.complete", withErr([]attribute.KeyValue{
		attribute.Int("placed", placed),
		attribute.Int("skipped", skipped),
		attribute.Int64("duration_ms", d.Milliseconds()),
	}, err)...)
}

func (OTelHooks) OnRenderStart(ctx context.Context, formats []string) {
	event(ctx, "render.start", attribute.StringSlice("formats", formats))
}

func (OTelHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	event(ctx, "render.complete", withErr([]attribute.KeyValue{
		attribute.StringSlice("formats", formats),
		attribute.Int64("duration_ms", d.Milliseconds()),
	}, err)...)
}

func (OTelHooks) OnPlace(ctx context.Context, index int, direction string, d time.Duration) {
	event(ctx, "placement.place",
		attribute.Int("index", index),
		attribute.String("direction", direction),
		attribute.Int64("duration_us", d.Microseconds()))
}

func (OTelHooks) OnUnplaceable(ctx context.Context, width, height float64) {
	event(ctx, "placement.unplaceable", attribute.Float64("width", width), attribute.Float64("height", height))
}

func (OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	event(ctx, "cache.hit", attribute.String("key_type", keyType))
}

func (OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	event(ctx, "cache.miss", attribute.String("key_type", keyType))
}

func (OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	event(ctx, "cache.set", attribute.String("key_type", keyType), attribute.Int("size", size))
}

// RegisterOTel installs OTelHooks for every hook category.
func RegisterOTel() {
	h := OTelHooks{}
	SetPipelineHooks(h)
	SetPlacementHooks(h)
	SetCacheHooks(h)
}

var (
	_ PipelineHooks  = OTelHooks{}
	_ PlacementHooks = OTelHooks{}
	_ CacheHooks     = OTelHooks{}
)
