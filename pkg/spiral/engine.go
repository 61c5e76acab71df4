package spiral

import (
	"errors"
	"math"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
)

// ErrUnplaceable is returned when no side of any placed box can hold the new
// box without overlap. The layout passed to the failing call is unchanged.
var ErrUnplaceable = errors.New("can't add box")

const (
	// DefaultTilt is the default horizontal tilt factor. 0.5 maps to no offset,
	// so boxes above and below a parent are right-aligned with it.
	DefaultTilt = 0.5

	// DefaultAspectRatio disables the aspect-ratio correction.
	DefaultAspectRatio = 0.0

	// SuggestedAspectRatio is a width/height target that keeps layouts
	// landscape when the correction is enabled.
	SuggestedAspectRatio = 1.9
)

// Options configures an Engine.
type Options struct {
	// Tilt biases the horizontal offset of boxes attached above or below a
	// parent. It is mapped from [0, 1] to [-1, 1] and multiplied by the new
	// box's width. Larger values push boxes to the right.
	Tilt float64 `json:"tilt" toml:"tilt"`

	// AspectRatio enables redirection of Top to Right and Bottom to Left while
	// the layout's width/height is below this value. Zero disables it.
	AspectRatio float64 `json:"aspect_ratio,omitempty" toml:"aspect_ratio"`

	// Round snaps tilt offsets to the nearest integer so positions stay on an
	// integer grid when sizes are integral.
	Round bool `json:"round" toml:"round"`
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{Tilt: DefaultTilt, AspectRatio: DefaultAspectRatio, Round: true}
}

// Option configures an Engine.
type Option func(*Options)

// WithTilt sets the horizontal tilt factor.
func WithTilt(t float64) Option { return func(o *Options) { o.Tilt = t } }

// WithAspectRatio enables the aspect-ratio correction with the given target.
func WithAspectRatio(r float64) Option { return func(o *Options) { o.AspectRatio = r } }

// WithRounding toggles integer rounding of tilt offsets.
func WithRounding(round bool) Option { return func(o *Options) { o.Round = round } }

// WithOptions replaces the whole option set.
func WithOptions(opts Options) Option { return func(o *Options) { *o = opts } }

// Engine places boxes. It holds only configuration and is safe for concurrent
// use; the layouts it operates on are values owned by the caller.
type Engine struct {
	opts Options
}

// New creates an engine with the given options applied over DefaultOptions.
func New(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Placement is the result of a successful placement.
type Placement struct {
	Layout    Layout      // layout including the new box
	Bounds    BoundingBox // bounds including the new box
	Direction Direction   // side of the parent the box was attached to; the next hint
	Box       PlacedBox   // the new box
	Index     int         // index of the new box in Layout
	Parent    int         // index of the parent box, -1 for the first box
}

var defaultEngine = New()

// PlaceNext places box using the default engine. See [Engine.PlaceNext].
func PlaceNext(box Box, l Layout, hint Direction, bounds BoundingBox) (Placement, error) {
	return defaultEngine.PlaceNext(box, l, hint, bounds)
}

// PlaceNext attaches box to the first free, non-overlapping side found by
// walking placed boxes oldest first and trying their sides in the cycle
// rotated to start at hint.
//
// The first box of an empty layout goes to the origin and keeps hint as its
// direction. The box size must be strictly positive in both dimensions.
//
// On failure the returned error wraps [ErrUnplaceable] and carries the
// UNPLACEABLE error code; l and bounds remain the caller's current state.
func (e *Engine) PlaceNext(box Box, l Layout, hint Direction, bounds BoundingBox) (Placement, error) {
	if !hint.Valid() {
		hint = Right
	}
	if l.Empty() {
		placed := PlacedBox{Size: box.Size}
		return Placement{
			Layout:    l.with(placed, AllAvailable().Without(hint.Opposite()), -1, AvailableSpace{}, nil),
			Bounds:    BoundsOf(placed),
			Direction: hint,
			Box:       placed,
			Index:     0,
			Parent:    -1,
		}, nil
	}

	var pruned []int
	for _, id := range l.active {
		space := l.spaces[id]
		if space.Exhausted() {
			pruned = append(pruned, id)
			continue
		}
		parent := l.boxes[id]
		for _, requested := range Rotation(hint) {
			if !space.Has(requested) {
				continue
			}
			dir := e.steer(requested, bounds)
			if !space.Has(dir) {
				continue
			}
			candidate := e.project(parent, dir, box.Size)
			if collides(candidate, l.boxes) {
				continue
			}
			next := l.with(candidate, AllAvailable().Without(dir.Opposite()), id, space.Without(dir), pruned)
			return Placement{
				Layout:    next,
				Bounds:    bounds.Expand(candidate),
				Direction: dir,
				Box:       candidate,
				Index:     next.Len() - 1,
				Parent:    id,
			}, nil
		}
	}

	return Placement{}, perrors.Wrap(perrors.ErrCodeUnplaceable, ErrUnplaceable,
		"box %gx%g does not fit beside any of %d placed boxes", box.Size.X, box.Size.Y, l.Len())
}

// Candidates returns the directions that would be tried on box id, in order,
// for the given hint and bounds. Consumed sides are omitted.
func (e *Engine) Candidates(l Layout, id int, hint Direction, bounds BoundingBox) []Direction {
	space, ok := l.spaces[id]
	if !ok {
		return nil
	}
	var out []Direction
	for _, requested := range Rotation(hint) {
		if !space.Has(requested) {
			continue
		}
		if dir := e.steer(requested, bounds); space.Has(dir) {
			out = append(out, dir)
		}
	}
	return out
}

// steer applies the aspect-ratio correction to a requested direction. The
// bounds are the ones in effect before the current placement.
func (e *Engine) steer(d Direction, bounds BoundingBox) Direction {
	if e.opts.AspectRatio <= 0 || bounds.Height() <= 0 {
		return d
	}
	if bounds.AspectRatio() >= e.opts.AspectRatio {
		return d
	}
	switch d {
	case Top:
		return Right
	case Bottom:
		return Left
	}
	return d
}

// project returns the rectangle of a box of the given size attached to side d
// of parent.
func (e *Engine) project(parent PlacedBox, d Direction, size Vec) PlacedBox {
	side := parent.Side(d)
	w, h := size.X, size.Y
	var pos Vec
	switch d {
	case Right:
		pos = side.A
	case Left:
		pos = V(side.A.X-w, side.B.Y-h)
	case Bottom:
		pos = V(side.B.X-w+e.tiltOffset(w), side.A.Y)
	case Top:
		pos = V(side.B.X-w+e.tiltOffset(w), side.A.Y-h)
	}
	return PlacedBox{Position: pos, Size: size}
}

// tiltOffset returns the horizontal shift for a box of width w.
func (e *Engine) tiltOffset(w float64) float64 {
	off := w * tiltPercent(e.opts.Tilt)
	if e.opts.Round {
		return roundHalfUp(off)
	}
	return off
}

// tiltPercent maps a tilt factor from [0, 1] to [-1, 1].
func tiltPercent(t float64) float64 {
	return fit(t, 0, 1, -1, 1)
}

func fit(v, lo, hi, loOut, hiOut float64) float64 {
	return (v-lo)/(hi-lo)*(hiOut-loOut) + loOut
}

// roundHalfUp rounds to the nearest integer with halves rounded toward +Inf.
func roundHalfUp(v float64) float64 {
	r := math.Floor(v + 0.5)
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

// collides reports whether candidate overlaps any placed box. The eroded test
// decides on integer grids; the interior test catches sub-unit intrusions left
// by unrounded tilt offsets or fractional sizes.
func collides(candidate PlacedBox, placed []PlacedBox) bool {
	for _, b := range placed {
		if candidate.Overlaps(b) || candidate.Intersects(b) {
			return true
		}
	}
	return false
}
