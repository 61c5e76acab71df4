// Package sink renders scenes into output formats.
//
// # Overview
//
// A "sink" transforms a [scene.Scene] into a final artifact. Every renderer
// draws the normalized scene, so the bounding box starts at the origin and
// negative coordinates produced by Left and Top placements are visible.
//
//   - SVG: vector output via ajstarks/svgo
//   - PNG: raster output via fogleman/gg
//   - PDF: a page fitted to A4 landscape with a statistics line, via go-pdf/fpdf
//   - JSON: the scene itself, for re-rendering later
//
// # Options
//
// All renderers share one option set:
//
//   - [WithLabels]: draw block labels (default on)
//   - [WithMargin]: padding around the bounds in scene units
//   - [WithScale]: output units per scene unit (PNG defaults to 2)
//   - [WithPalette]: block fill colors, by placement index
//
// The default palette cycles hues in 60 degree steps at 70% saturation and
// 60% lightness, so consecutive blocks are easy to tell apart.
//
// Basic usage:
//
//	svg := sink.RenderSVG(s, sink.WithMargin(10))
//	png, err := sink.RenderPNG(s, sink.WithScale(4))
//
// [scene.Scene]: github.com/matzehuels/pinwheel/pkg/scene.Scene
package sink
