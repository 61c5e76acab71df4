package spiral

import (
	"fmt"
	"math"
)

// Vec is a 2D pair used both as a point and as a width/height size.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// String returns a string representation of the vector.
func (v Vec) String() string { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }

// Box is a placement request. Only its size matters to the engine.
type Box struct {
	Size Vec `json:"size"`
}

// Side is an edge of a placed box, from A to B.
type Side struct {
	A Vec `json:"a"`
	B Vec `json:"b"`
}

// PlacedBox is a positioned rectangle. Position is the top-left corner.
type PlacedBox struct {
	Position Vec `json:"position"`
	Size     Vec `json:"size"`
}

// Max returns the bottom-right corner.
func (b PlacedBox) Max() Vec { return b.Position.Add(b.Size) }

// Side returns the edge of b facing d.
func (b PlacedBox) Side(d Direction) Side {
	p, s := b.Position, b.Size
	switch d {
	case Right:
		return Side{A: V(p.X+s.X, p.Y), B: V(p.X+s.X, p.Y+s.Y)}
	case Bottom:
		return Side{A: V(p.X, p.Y+s.Y), B: V(p.X+s.X, p.Y+s.Y)}
	case Left:
		return Side{A: p, B: V(p.X, p.Y+s.Y)}
	default:
		return Side{A: p, B: V(p.X+s.X, p.Y)}
	}
}

// erosion shrinks rectangles before the overlap test so shared edges are not
// reported as collisions.
const erosion = 1

// Overlaps reports whether b and o still intersect after both are eroded by
// one unit from the top-left. On an integer grid this is exactly an interior
// overlap; intrusions shallower than one unit are not reported.
func (b PlacedBox) Overlaps(o PlacedBox) bool {
	x1, y1 := b.Position.X+erosion, b.Position.Y+erosion
	w1, h1 := b.Size.X-erosion, b.Size.Y-erosion
	x2, y2 := o.Position.X+erosion, o.Position.Y+erosion
	w2, h2 := o.Size.X-erosion, o.Size.Y-erosion
	return !(x2 > x1+w1 || x2+w2 < x1 || y2 > y1+h1 || y2+h2 < y1)
}

// interiorEpsilon absorbs float noise on shared edges.
const interiorEpsilon = 1e-9

// Intersects reports whether the open interiors of b and o intersect by more
// than float noise. Shared edges and corners do not count.
func (b PlacedBox) Intersects(o PlacedBox) bool {
	bMax, oMax := b.Max(), o.Max()
	return b.Position.X < oMax.X-interiorEpsilon && o.Position.X < bMax.X-interiorEpsilon &&
		b.Position.Y < oMax.Y-interiorEpsilon && o.Position.Y < bMax.Y-interiorEpsilon
}

// BoundingBox is the axis-aligned extent of a layout.
type BoundingBox struct {
	Min Vec `json:"min"` // top-left
	Max Vec `json:"max"` // bottom-right
}

// BoundsOf returns the bounding box of a single placed box.
func BoundsOf(b PlacedBox) BoundingBox {
	return BoundingBox{Min: b.Position, Max: b.Max()}
}

// Expand returns the smallest bounding box containing bb and b. It never shrinks.
func (bb BoundingBox) Expand(b PlacedBox) BoundingBox {
	br := b.Max()
	return BoundingBox{
		Min: V(math.Min(bb.Min.X, b.Position.X), math.Min(bb.Min.Y, b.Position.Y)),
		Max: V(math.Max(bb.Max.X, br.X), math.Max(bb.Max.Y, br.Y)),
	}
}

// Width returns the horizontal extent.
func (bb BoundingBox) Width() float64 { return bb.Max.X - bb.Min.X }

// Height returns the vertical extent.
func (bb BoundingBox) Height() float64 { return bb.Max.Y - bb.Min.Y }

// Size returns the width/height pair.
func (bb BoundingBox) Size() Vec { return bb.Max.Sub(bb.Min) }

// AspectRatio returns width/height, or 0 for an empty box.
func (bb BoundingBox) AspectRatio() float64 {
	if bb.Height() <= 0 {
		return 0
	}
	return bb.Width() / bb.Height()
}

// Contains reports whether b lies entirely inside bb.
func (bb BoundingBox) Contains(b PlacedBox) bool {
	br := b.Max()
	return b.Position.X >= bb.Min.X && b.Position.Y >= bb.Min.Y &&
		br.X <= bb.Max.X && br.Y <= bb.Max.Y
}

// ContainsBounds reports whether o lies entirely inside bb.
func (bb BoundingBox) ContainsBounds(o BoundingBox) bool {
	return o.Min.X >= bb.Min.X && o.Min.Y >= bb.Min.Y &&
		o.Max.X <= bb.Max.X && o.Max.Y <= bb.Max.Y
}

// String returns a string representation of the bounds.
func (bb BoundingBox) String() string {
	return fmt.Sprintf("[%s, %s]", bb.Min, bb.Max)
}
