// Package spiral implements the spiral placement engine.
//
// # Overview
//
// Boxes arrive one at a time. Each new box is attached flush to one side of a
// box that is already placed, so the arrangement grows outward as a pinwheel
// around the first box. The engine keeps, for every placed box, a record of
// which of its four sides can still take a child; a side is consumed when a
// child is attached to it, and the side of a child that faces its parent is
// consumed at creation.
//
// # Search Order
//
// For each call the engine walks the placed boxes oldest first. For each box
// it tries the four sides in the cycle Right, Bottom, Left, Top rotated to
// start at the direction used by the previous placement. Continuing in the
// same rotational sense is what produces the spiral. The first candidate that
// does not overlap any placed box wins.
//
// # Geometry
//
//   - Right: the new box's top-left corner is the parent's top-right corner.
//   - Left: the new box is bottom-aligned with the parent, left of it.
//   - Bottom/Top: the new box is placed below/above the parent, right-aligned
//     and then shifted by the tilt factor times its width.
//
// Overlap is tested after eroding both rectangles by one unit, so boxes that
// only share an edge do not collide.
//
// # State
//
// [Layout] is a value. [Engine.PlaceNext] never modifies the layout it is
// given and returns a fresh one on success; on failure it returns
// [ErrUnplaceable] and the caller keeps its previous state. A [Packer] threads
// the layout, direction hint and bounds across calls for callers that place a
// sequence of boxes.
//
// # Usage
//
//	p := spiral.NewPacker(spiral.New(), spiral.Right)
//	for _, size := range sizes {
//	    placement, err := p.Place(size)
//	    if errors.Is(err, spiral.ErrUnplaceable) {
//	        continue // caller policy: skip the box
//	    }
//	    fmt.Println(placement.Box.Position)
//	}
package spiral
