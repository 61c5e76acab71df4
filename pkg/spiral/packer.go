package spiral

import (
	"errors"
	"fmt"
)

// State is a serializable snapshot of a Packer.
//
// Parents and Directions are indexed like the layout's boxes and record the
// attachment tree: box i was attached to side Directions[i] of box Parents[i].
// The first box has parent -1 and the initial hint as its direction.
type State struct {
	Layout     Layout      `json:"layout"`
	Hint       Direction   `json:"hint"`
	Bounds     BoundingBox `json:"bounds"`
	Parents    []int       `json:"parents"`
	Directions []Direction `json:"directions"`
}

// NewState returns the state of an empty layout that will start with hint.
func NewState(hint Direction) State {
	return State{Layout: NewLayout(), Hint: hint}
}

// Len returns the number of placed boxes.
func (s State) Len() int { return s.Layout.Len() }

// Validate checks that the snapshot is internally consistent.
func (s State) Validate() error {
	n := s.Layout.Len()
	if !s.Hint.Valid() {
		return fmt.Errorf("invalid hint %d", s.Hint)
	}
	if len(s.Parents) != n || len(s.Directions) != n {
		return fmt.Errorf("attachment records (%d parents, %d directions) do not match %d boxes",
			len(s.Parents), len(s.Directions), n)
	}
	for i, b := range s.Layout.boxes {
		if b.Size.X <= 0 || b.Size.Y <= 0 {
			return fmt.Errorf("box %d has non-positive size %s", i, b.Size)
		}
		if !s.Bounds.Contains(b) {
			return fmt.Errorf("box %d at %s lies outside bounds %s", i, b.Position, s.Bounds)
		}
		if p := s.Parents[i]; p >= i || (i > 0 && p < 0) || (i == 0 && p != -1) {
			return fmt.Errorf("box %d has invalid parent %d", i, p)
		}
		if !s.Directions[i].Valid() {
			return fmt.Errorf("box %d has invalid direction %d", i, s.Directions[i])
		}
	}
	return nil
}

// Packer threads layout, hint and bounds through successive PlaceNext calls.
// It is not safe for concurrent use.
type Packer struct {
	engine *Engine
	state  State
}

// NewPacker creates a packer for an empty layout. A nil engine uses defaults.
func NewPacker(engine *Engine, hint Direction) *Packer {
	if engine == nil {
		engine = defaultEngine
	}
	return &Packer{engine: engine, state: NewState(hint)}
}

// Engine returns the engine used for placement.
func (p *Packer) Engine() *Engine { return p.engine }

// Len returns the number of placed boxes.
func (p *Packer) Len() int { return p.state.Layout.Len() }

// Layout returns the current layout.
func (p *Packer) Layout() Layout { return p.state.Layout }

// Bounds returns the current bounding box.
func (p *Packer) Bounds() BoundingBox { return p.state.Bounds }

// Hint returns the direction the next placement will try first.
func (p *Packer) Hint() Direction { return p.state.Hint }

// Place places a box of the given size. On error the packer is unchanged.
func (p *Packer) Place(size Vec) (Placement, error) {
	res, err := p.engine.PlaceNext(Box{Size: size}, p.state.Layout, p.state.Hint, p.state.Bounds)
	if err != nil {
		return Placement{}, err
	}
	p.state = State{
		Layout:     res.Layout,
		Hint:       res.Direction,
		Bounds:     res.Bounds,
		Parents:    append(clip(p.state.Parents), res.Parent),
		Directions: append(clip(p.state.Directions), res.Direction),
	}
	return res, nil
}

// PlaceAll places sizes in order. With skipUnplaceable set, boxes that do not
// fit are recorded in skipped and the run continues; otherwise the first
// failure stops the run and is returned alongside the placements made so far.
func (p *Packer) PlaceAll(sizes []Vec, skipUnplaceable bool) (placed []Placement, skipped []int, err error) {
	for i, size := range sizes {
		res, err := p.Place(size)
		if err != nil {
			if skipUnplaceable && errors.Is(err, ErrUnplaceable) {
				skipped = append(skipped, i)
				continue
			}
			return placed, skipped, fmt.Errorf("box %d: %w", i, err)
		}
		placed = append(placed, res)
	}
	return placed, skipped, nil
}

// State returns a snapshot of the packer. The snapshot shares no mutable
// memory with the packer.
func (p *Packer) State() State {
	s := p.state
	s.Parents = clip(s.Parents)
	s.Directions = clip(s.Directions)
	return s
}

// Restore replaces the packer state with s after validating it.
func (p *Packer) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	s.Parents = clip(s.Parents)
	s.Directions = clip(s.Directions)
	p.state = s
	return nil
}

// clip returns a fresh copy of s, so appends never write into memory shared
// with an earlier snapshot.
func clip[T any](s []T) []T {
	return append(make([]T, 0, len(s)+1), s...)
}
