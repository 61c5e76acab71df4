package sink

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/pinwheel/pkg/scene"
)

// Palette returns the fill color of the block placed at index i.
type Palette func(i int) colorful.Color

// DefaultPalette steps the hue by 60 degrees per block.
func DefaultPalette(i int) colorful.Color {
	return colorful.Hsl(math.Mod(float64(i)*60, 360), 0.7, 0.6)
}

// MonochromePalette fills every block with the same color.
func MonochromePalette(c colorful.Color) Palette {
	return func(int) colorful.Color { return c }
}

// Option configures a renderer.
type Option func(*config)

type config struct {
	labels  bool
	margin  float64
	scale   float64
	palette Palette
}

// WithLabels toggles block labels.
func WithLabels(show bool) Option { return func(c *config) { c.labels = show } }

// WithMargin sets the padding around the bounds, in scene units.
func WithMargin(m float64) Option { return func(c *config) { c.margin = math.Max(m, 0) } }

// WithScale sets the number of output units per scene unit.
func WithScale(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithPalette replaces the block colors.
func WithPalette(p Palette) Option {
	return func(c *config) {
		if p != nil {
			c.palette = p
		}
	}
}

func newConfig(scale float64, opts ...Option) config {
	c := config{labels: true, scale: scale, palette: DefaultPalette}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// canvas returns the output size for a normalized scene.
func (c config) canvas(s scene.Scene) (w, h float64) {
	w = math.Ceil((s.Width() + 2*c.margin) * c.scale)
	h = math.Ceil((s.Height() + 2*c.margin) * c.scale)
	return math.Max(w, 1), math.Max(h, 1)
}

// rect maps a block of a normalized scene to output coordinates.
func (c config) rect(b scene.Block) (x, y, w, h float64) {
	return (b.X + c.margin) * c.scale, (b.Y + c.margin) * c.scale, b.Width * c.scale, b.Height * c.scale
}
