// Package scene provides the serialization format for placement results.
//
// A [Scene] is the unit that flows between the CLI, the HTTP API, the cache
// and the renderers. It carries the placed blocks with their attachment
// records, the running bounds, the next direction hint and the engine
// options, so a scene written by `pinwheel layout` can be rendered later or
// resumed with more boxes:
//
//	{
//	  "version": 1,
//	  "hint": "bottom",
//	  "bounds": {"min": {"x": 0, "y": 0}, "max": {"x": 15, "y": 15}},
//	  "blocks": [
//	    {"index": 0, "x": 0, "y": 0, "width": 10, "height": 10, "parent": -1, "direction": "right"},
//	    {"index": 1, "x": 10, "y": 0, "width": 5, "height": 5, "parent": 0, "direction": "right"}
//	  ],
//	  "spaces": {"0": {"right": false, "bottom": true, "left": false, "top": true}, ...}
//	}
//
// Use [FromState] and [Scene.State] to convert between scenes and the
// engine's [spiral.State].
package scene
