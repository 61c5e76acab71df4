// Package pipeline provides the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a box list from a file, a reader or an in-memory list
//  2. Layout: Place the boxes with the spiral engine and build a scene
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, XLSX, DXF, tree)
//
// Each stage can be run independently or as part of the complete pipeline.
// Layouts and artifacts are cached by content hash when the [Runner] has a cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "boxes.csv",
//	    Formats: []string{"svg", "xlsx"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinwheel/pkg/cache"
	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultHint is the direction the first placement tries first.
	DefaultHint = "right"

	// DefaultMargin is the padding around rendered scenes, in scene units.
	DefaultMargin = 10.0

	// DefaultScale is the number of output units per scene unit.
	DefaultScale = 2.0

	// MaxBoxes bounds the number of boxes in one pipeline run.
	MaxBoxes = 100_000
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatDXF  = "dxf"
	FormatTree = "tree"
)

// Formats lists every output format in a stable order.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatXLSX, FormatDXF, FormatTree}

// ContentType returns the media type of an output format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatTree:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDXF:
		return "image/vnd.dxf"
	}
	return "application/octet-stream"
}

// Extension returns the file extension used when writing a format to disk.
func Extension(format string) string {
	if format == FormatTree {
		return "tree.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Input       string     `json:"input,omitempty"`        // path to a box list
	InputFormat string     `json:"input_format,omitempty"` // overrides detection by extension
	Items       []pio.Item `json:"items,omitempty"`        // in-memory box list, takes precedence over Input

	// Layout options
	Hint              string   `json:"hint,omitempty"`
	Tilt              *float64 `json:"tilt,omitempty"` // nil means spiral.DefaultTilt
	AspectRatio       float64  `json:"aspect_ratio,omitempty"`
	NoRound           bool     `json:"no_round,omitempty"`
	StopOnUnplaceable bool     `json:"stop_on_unplaceable,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`
	Margin   *float64 `json:"margin,omitempty"` // nil means DefaultMargin
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // detailed tree node labels

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Reader io.Reader   `json:"-"` // box list stream, used when Input is "-"
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the placement result.
	Scene scene.Scene

	// BoxesHash is the content hash of the loaded box list.
	BoxesHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Boxes      int
	Placed     int
	Skipped    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return perrors.New(perrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
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

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a box source is configured.
func (o *Options) ValidateForLoad() error {
	o.setLogger()
	if len(o.Items) > 0 {
		return nil
	}
	if o.Input == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "input or items is required")
	}
	if o.Input == "-" {
		if o.Reader == nil {
			return perrors.New(perrors.ErrCodeInvalidInput, "reading from stdin requires a reader")
		}
		if o.InputFormat == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "input format is required when reading from stdin")
		}
	}
	if o.InputFormat != "" {
		if _, err := pio.ParseFormat(o.InputFormat); err != nil {
			return err
		}
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Hint == "" {
		o.Hint = DefaultHint
	}
	if o.Tilt == nil {
		t := spiral.DefaultTilt
		o.Tilt = &t
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := spiral.ParseDirection(o.Hint); err != nil {
		return err
	}
	if *o.Tilt < 0 || *o.Tilt > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "tilt must be between 0 and 1, got %g", *o.Tilt)
	}
	if o.AspectRatio < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "aspect ratio must not be negative, got %g", o.AspectRatio)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Margin == nil {
		m := DefaultMargin
		o.Margin = &m
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if *o.Margin < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "margin must not be negative, got %g", *o.Margin)
	}
	if o.Scale < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HintDirection returns the parsed hint, or spiral.Right if it is unset or invalid.
func (o *Options) HintDirection() spiral.Direction {
	d, err := spiral.ParseDirection(o.Hint)
	if err != nil {
		return spiral.Right
	}
	return d
}

// EngineOptions returns the engine configuration described by the options.
func (o *Options) EngineOptions() spiral.Options {
	eo := spiral.DefaultOptions()
	if o.Tilt != nil {
		eo.Tilt = *o.Tilt
	}
	eo.AspectRatio = o.AspectRatio
	eo.Round = !o.NoRound
	return eo
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	eo := o.EngineOptions()
	return cache.LayoutKeyOpts{
		Hint:            o.HintDirection().String(),
		Tilt:            eo.Tilt,
		AspectRatio:     eo.AspectRatio,
		Round:           eo.Round,
		SkipUnplaceable: !o.StopOnUnplaceable,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Labels: !o.NoLabels,
		Scale:  o.Scale,
	}
	if o.Margin != nil {
		opts.Margin = *o.Margin
	}
	if format == FormatTree && o.Detailed {
		opts.Format = "tree-detailed"
	}
	return opts
}
