// Package tree renders the attachment tree of a scene as a node-link diagram.
//
// Every placed block except the first has exactly one parent: the block it
// was attached to. [ToDOT] emits that tree as a Graphviz digraph with one edge
// per placement, labelled with the side the child was attached to. [RenderSVG]
// and [RenderPNG] lay the graph out with Graphviz.
package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pinwheel/pkg/render/sink"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds position and size to node labels.
	Detailed bool
	// Palette colors nodes like the blocks of the scene renderers. Nil uses
	// [sink.DefaultPalette].
	Palette sink.Palette
}

// ToDOT converts the scene's attachment tree to Graphviz DOT format.
func ToDOT(s scene.Scene, opts Options) string {
	palette := opts.Palette
	if palette == nil {
		palette = sink.DefaultPalette
	}

	var buf bytes.Buffer
	buf.WriteString("digraph pinwheel {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, b := range s.Blocks {
		fmt.Fprintf(&buf, "  b%d [label=%q, fillcolor=%q];\n", b.Index, nodeLabel(b, opts.Detailed), palette(b.Index).Hex())
	}

	buf.WriteString("\n")
	for _, b := range s.Blocks {
		if b.Parent < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  b%d -> b%d [label=%q];\n", b.Parent, b.Index, b.Direction.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(b scene.Block, detailed bool) string {
	if !detailed {
		return b.DisplayLabel()
	}
	return fmt.Sprintf("%s\n(%g, %g)\n%gx%g", b.DisplayLabel(), b.X, b.Y, b.Width, b.Height)
}

// RenderSVG lays out a DOT graph and renders it as SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out a DOT graph and renders it as PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one sized
// in user units so the diagram scales like the scene SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
