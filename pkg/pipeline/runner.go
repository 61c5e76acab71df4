package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/pinwheel/pkg/cache"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/observability"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
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

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.execute")
	result, err := r.execute(ctx, opts)
	observability.EndSpan(span, err)
	return result, err
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	items, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Boxes = len(items)

	r.Logger.Info("loaded boxes",
		"boxes", len(items),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	s, boxesHash, layoutHit, err := r.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = s
	result.BoxesHash = boxesHash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Placed = len(s.Blocks)
	result.Stats.Skipped = len(s.Skipped)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"placed", len(s.Blocks),
		"skipped", len(s.Skipped),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the box list, reporting to the pipeline hooks.
func (r *Runner) Load(ctx context.Context, opts Options) ([]pio.Item, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	source := opts.Input
	if len(opts.Items) > 0 {
		source = "items"
	}
	ctx, span := observability.StartSpan(ctx, "pipeline.load", attribute.String("source", source))
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)

	start := time.Now()
	items, err := Load(ctx, opts)
	hooks.OnLoadComplete(ctx, source, len(items), time.Since(start), err)
	observability.EndSpan(span, err)
	return items, err
}

// LayoutWithCacheInfo places items with caching. It returns the scene, the
// hash of the box list and whether the scene came from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []pio.Item, opts Options) (scene.Scene, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return scene.Scene{}, "", false, err
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.layout", attribute.Int("boxes", len(items)))
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(items))
	start := time.Now()

	s, boxesHash, hit, err := r.layout(ctx, items, opts)

	hooks.OnLayoutComplete(ctx, len(s.Blocks), len(s.Skipped), time.Since(start), err)
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	observability.EndSpan(span, err)
	return s, boxesHash, hit, err
}

func (r *Runner) layout(ctx context.Context, items []pio.Item, opts Options) (scene.Scene, string, bool, error) {
	boxesHash, err := cache.HashJSON(items)
	if err != nil {
		return scene.Scene{}, "", false, err
	}
	c := cache.NewInstrumented(r.Cache, "layout")
	cacheKey := r.Keyer.LayoutKey(boxesHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := c.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := scene.Unmarshal(data); err == nil {
				return cached, boxesHash, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("layout cache unavailable", "error", err)
		}
	}

	s, err := GenerateLayout(ctx, items, opts)
	if err != nil {
		return scene.Scene{}, boxesHash, false, err
	}

	if data, err := scene.Marshal(s); err == nil {
		if err := c.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			r.Logger.Debug("cache layout", "error", err)
		}
	}
	return s, boxesHash, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, items []pio.Item, opts Options) (scene.Scene, error) {
	s, _, _, err := r.LayoutWithCacheInfo(ctx, items, opts)
	return s, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s scene.Scene, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.render", attribute.StringSlice("formats", opts.Formats))
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, s, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	observability.EndSpan(span, err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, s scene.Scene, opts Options) (map[string][]byte, bool, error) {
	sceneData, err := scene.Marshal(s)
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(sceneData)
	c := cache.NewInstrumented(r.Cache, "artifact")

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := c.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := c.Set(ctx, cacheKey, data, cache.ArtifactTTL); err != nil {
			r.Logger.Debug("cache artifact", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s scene.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

// Scoped returns a runner sharing r's cache and logger whose cache keys all
// start with prefix. Closing the scoped runner closes the shared cache.
func (r *Runner) Scoped(prefix string) *Runner {
	return &Runner{
		Cache:  r.Cache,
		Keyer:  cache.NewScopedKeyer(r.Keyer, prefix),
		Logger: r.Logger,
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
