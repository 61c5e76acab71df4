package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/pinwheel/pkg/fonts"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

const (
	svgBlockStyle = "fill:%s;stroke:#333333;stroke-width:1"
	svgTextStyle  = "text-anchor:middle;dominant-baseline:central;font-family:%s;font-size:%dpx;fill:#1a1a1a"
)

// RenderSVG renders the scene as SVG. Coordinates are rounded to whole output
// units; use [WithScale] to keep sub-unit detail.
func RenderSVG(s scene.Scene, opts ...Option) []byte {
	c := newConfig(1, opts...)
	n := s.Normalized()
	cw, ch := c.canvas(n)
	w, h := int(cw), int(ch)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	canvas.Title(fmt.Sprintf("pinwheel: %d blocks", len(n.Blocks)))
	canvas.Rect(0, 0, w, h, "fill:#ffffff")

	for _, b := range n.Blocks {
		x, y, bw, bh := c.rect(b)
		ix, iy, iw, ih := round(x), round(y), round(bw), round(bh)
		canvas.Gid(fmt.Sprintf("block-%d", b.Index))
		canvas.Rect(ix, iy, iw, ih, fmt.Sprintf(svgBlockStyle, c.palette(b.Index).Hex()))
		if c.labels {
			if size := labelSize(b.DisplayLabel(), bw, bh); size > 0 {
				canvas.Text(ix+iw/2, iy+ih/2, b.DisplayLabel(), fmt.Sprintf(svgTextStyle, fonts.Family, size))
			}
		}
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes()
}

// labelSize picks a font size that fits the label inside a w×h block, or 0 if
// no legible size fits.
func labelSize(label string, w, h float64) int {
	const minSize, maxSize = 6, 24
	if label == "" {
		return 0
	}
	// Average glyph width is about 0.6em for sans-serif.
	size := math.Min(h*0.5, w*0.9/(0.6*float64(len([]rune(label)))))
	size = math.Min(size, maxSize)
	if size < minSize {
		return 0
	}
	return int(size)
}

func round(v float64) int { return int(math.Floor(v + 0.5)) }
