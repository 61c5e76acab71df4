// Package pkg provides the core libraries for pinwheel spiral packing.
//
// # Overview
//
// Pinwheel places rectangles one at a time around a growing cluster. Every
// new box is attached to a side of the most recently placed box that still
// has room, trying the sides in a fixed rotation so the cluster grows as a
// spiral. The pkg directory is organized into four areas:
//
//  1. [spiral] - The placement engine (geometry, directions, layout state)
//  2. [scene] - The serialized result of a placement run
//  3. [pipeline] - Orchestration (load → layout → render)
//  4. [session], [server] - Long-lived incremental layouts over HTTP
//
// # Architecture
//
// The typical data flow:
//
//	Box list (CSV, JSON, TOML, XLSX, DXF) or box source (random, script)
//	         ↓
//	    [io] / [source] packages (read items)
//	         ↓
//	    [spiral] package (place boxes)
//	         ↓
//	    [scene] package (placement result)
//	         ↓
//	    [render/sink], [render/tree] packages (SVG, PNG, PDF, JSON, XLSX, DXF, tree)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/pinwheel/pkg/render/sink"
//	    "github.com/matzehuels/pinwheel/pkg/scene"
//	    "github.com/matzehuels/pinwheel/pkg/spiral"
//	)
//
//	p := spiral.NewPacker(nil, spiral.Right)
//	for _, size := range []spiral.Vec{spiral.V(100, 100), spiral.V(50, 50)} {
//	    if _, err := p.Place(size); err != nil {
//	        return err
//	    }
//	}
//	s := scene.FromState(p.State(), nil, spiral.DefaultOptions())
//	svg := sink.RenderSVG(s)
//
// # Main Packages
//
// ## Engine
//
// [spiral] - Vectors, placed boxes, bounding boxes, directions and the
// per-box available-space flags. [spiral.Engine] is stateless; a
// [spiral.Packer] carries the layout, the hint and the bounds between calls.
//
// [scene] - Scene documents: blocks in placement order, bounds, spaces and
// the options they were produced with. Scenes round-trip back into engine
// state, so a saved scene can be extended later.
//
// ## Input
//
// [io] - Box list readers and tabular exporters.
//
// [source] - Box sources for live placement: fixed lists, seeded random demo
// sizes and JavaScript generators, plus the [source.Player] that steps them.
//
// ## Output
//
// [render/sink] - Scene renderers (SVG, PNG, PDF).
//
// [render/tree] - The parent tree of a scene drawn with Graphviz.
//
// [fonts] - The embedded label font.
//
// ## Infrastructure
//
// [pipeline] - The load → layout → render pipeline used by the CLI and the
// HTTP server. Ensures consistent behavior across entry points.
//
// [cache] - Content-addressed caching of layouts and artifacts (file, Redis).
//
// [session] - Incremental layouts keyed by session ID with memory, file,
// Redis and MongoDB stores.
//
// [server] - The HTTP API with server-sent placement events.
//
// [errors] - Coded errors shared by every entry point.
//
// [observability] - Placement hooks and the OpenTelemetry adapter.
//
// [buildinfo] - Version information set at link time.
//
// [spiral]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/spiral
// [scene]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/server
// [io]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/io
// [source]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/source
// [source.Player]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/source#Player
// [spiral.Engine]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/spiral#Engine
// [spiral.Packer]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/spiral#Packer
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/render/sink
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/render/tree
// [fonts]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/fonts
// [cache]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pinwheel/pkg/buildinfo
package pkg
