package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/matzehuels/pinwheel/pkg/fonts"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// MaxPNGDimension bounds the width and height of rendered PNGs in pixels.
const MaxPNGDimension = 16384

// RenderPNG renders the scene as PNG. The default scale is 2 pixels per scene unit.
func RenderPNG(s scene.Scene, opts ...Option) ([]byte, error) {
	c := newConfig(2, opts...)
	n := s.Normalized()
	w, h := c.canvas(n)
	if w > MaxPNGDimension || h > MaxPNGDimension {
		return nil, fmt.Errorf("png too large: %.0fx%.0f pixels (max %d per side), lower the scale", w, h, MaxPNGDimension)
	}

	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetLineWidth(1)

	for _, b := range n.Blocks {
		x, y, bw, bh := c.rect(b)
		col := c.palette(b.Index)
		dc.DrawRectangle(x, y, bw, bh)
		dc.SetRGB(col.R, col.G, col.B)
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.Stroke()

		if c.labels {
			label := b.DisplayLabel()
			size := labelSize(label, bw, bh)
			if size == 0 {
				continue
			}
			face, err := fonts.Label(float64(size))
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			if tw, th := dc.MeasureString(label); tw < bw-2 && th < bh-2 {
				dc.SetRGB(0.1, 0.1, 0.1)
				dc.DrawStringAnchored(label, x+bw/2, y+bh/2, 0.5, 0.5)
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
