package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/pinwheel/pkg/scene"
)

// A4 landscape page geometry in mm.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	pageMargin   = 15.0
	headerHeight = 10.0
	statsHeight  = 6.0
	drawAreaTop  = pageMargin + headerHeight + statsHeight + 4
)

// RenderPDF renders the scene on a single A4 landscape page. The drawing is
// scaled to fit the page; [WithScale] is ignored.
func RenderPDF(s scene.Scene, opts ...Option) ([]byte, error) {
	c := newConfig(1, opts...)
	n := s.Normalized()
	st := n.Stats()

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("pinwheel layout", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.CellFormat(pageWidth-2*pageMargin, headerHeight,
		fmt.Sprintf("Pinwheel layout (%g x %g)", st.Width, st.Height), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(pageMargin, pageMargin+headerHeight)
	pdf.CellFormat(pageWidth-2*pageMargin, statsHeight,
		fmt.Sprintf("Blocks: %d | Skipped: %d | Block area: %g | Fill: %.1f%%",
			st.Blocks, st.Skipped, st.Area, st.Fill*100), "", 0, "L", false, 0, "")

	drawW := pageWidth - 2*pageMargin
	drawH := pageHeight - drawAreaTop - pageMargin
	cw, ch := c.canvas(n)
	k := math.Min(drawW/cw, drawH/ch)
	offX := pageMargin + (drawW-cw*k)/2
	offY := drawAreaTop

	pdf.SetLineWidth(0.2)
	for _, b := range n.Blocks {
		x, y, bw, bh := c.rect(b)
		px, py, pw, ph := offX+x*k, offY+y*k, bw*k, bh*k
		r, g, bl := c.palette(b.Index).RGB255()
		pdf.SetFillColor(int(r), int(g), int(bl))
		pdf.SetDrawColor(50, 50, 50)
		pdf.Rect(px, py, pw, ph, "FD")

		if !c.labels {
			continue
		}
		label := b.DisplayLabel()
		pdf.SetFont("Helvetica", "", 8)
		if lw := pdf.GetStringWidth(label); lw < pw-1 && ph > 4 {
			pdf.SetTextColor(20, 20, 20)
			pdf.SetXY(px, py+ph/2-2)
			pdf.CellFormat(pw, 4, label, "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
