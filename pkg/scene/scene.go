package scene

import (
	"fmt"

	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// Version is the current scene format version.
const Version = 1

// Scene is the serialized result of a placement run.
type Scene struct {
	Version     int                           `json:"version"`
	Hint        spiral.Direction              `json:"hint"`
	Bounds      spiral.BoundingBox            `json:"bounds"`
	Blocks      []Block                       `json:"blocks"`
	Spaces      map[int]spiral.AvailableSpace `json:"spaces"`
	Tilt        float64                       `json:"tilt"`
	AspectRatio float64                       `json:"aspect_ratio,omitempty"`
	Round       bool                          `json:"round"`
	Skipped     []SkippedBox                  `json:"skipped,omitempty"`
}

// Block is one placed box.
type Block struct {
	Index     int              `json:"index"`
	Label     string           `json:"label,omitempty"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Parent    int              `json:"parent"`
	Direction spiral.Direction `json:"direction"`
}

// DisplayLabel returns the label if set, otherwise "#index".
func (b Block) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	return fmt.Sprintf("#%d", b.Index)
}

// Box returns the block as an engine box.
func (b Block) Box() spiral.PlacedBox {
	return spiral.PlacedBox{Position: spiral.V(b.X, b.Y), Size: spiral.V(b.Width, b.Height)}
}

// SkippedBox records an input box that could not be placed.
type SkippedBox struct {
	Input  int     `json:"input"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// New returns an empty scene for the given engine options and initial hint.
func New(opts spiral.Options, hint spiral.Direction) Scene {
	return FromState(spiral.NewState(hint), nil, opts)
}

// FromState converts an engine state into a scene. labels[i], when present,
// names box i.
func FromState(st spiral.State, labels []string, opts spiral.Options) Scene {
	s := Scene{
		Version:     Version,
		Hint:        st.Hint,
		Bounds:      st.Bounds,
		Blocks:      make([]Block, st.Layout.Len()),
		Spaces:      st.Layout.Spaces(),
		Tilt:        opts.Tilt,
		AspectRatio: opts.AspectRatio,
		Round:       opts.Round,
	}
	if s.Spaces == nil {
		s.Spaces = map[int]spiral.AvailableSpace{}
	}
	for i, b := range st.Layout.Boxes() {
		blk := Block{
			Index:  i,
			X:      b.Position.X,
			Y:      b.Position.Y,
			Width:  b.Size.X,
			Height: b.Size.Y,
			Parent: -1,
		}
		if i < len(st.Parents) {
			blk.Parent = st.Parents[i]
		}
		if i < len(st.Directions) {
			blk.Direction = st.Directions[i]
		}
		if i < len(labels) {
			blk.Label = labels[i]
		}
		s.Blocks[i] = blk
	}
	return s
}

// State rebuilds the engine state the scene was produced from. Blocks must be
// in placement order.
func (s Scene) State() (spiral.State, error) {
	boxes := make([]spiral.PlacedBox, len(s.Blocks))
	parents := make([]int, len(s.Blocks))
	dirs := make([]spiral.Direction, len(s.Blocks))
	for i, b := range s.Blocks {
		if b.Index != i {
			return spiral.State{}, fmt.Errorf("block %d has index %d", i, b.Index)
		}
		boxes[i] = b.Box()
		parents[i] = b.Parent
		dirs[i] = b.Direction
	}
	layout, err := spiral.LayoutFrom(boxes, s.Spaces)
	if err != nil {
		return spiral.State{}, err
	}
	st := spiral.State{Layout: layout, Hint: s.Hint, Bounds: s.Bounds, Parents: parents, Directions: dirs}
	if err := st.Validate(); err != nil {
		return spiral.State{}, err
	}
	return st, nil
}

// Options returns the engine options recorded in the scene.
func (s Scene) Options() spiral.Options {
	return spiral.Options{Tilt: s.Tilt, AspectRatio: s.AspectRatio, Round: s.Round}
}

// Labels returns the block labels in placement order.
func (s Scene) Labels() []string {
	out := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		out[i] = b.Label
	}
	return out
}

// Normalized returns a copy of the scene translated so the bounds start at
// the origin. Renderers draw normalized scenes.
func (s Scene) Normalized() Scene {
	dx, dy := s.Bounds.Min.X, s.Bounds.Min.Y
	out := s
	out.Blocks = make([]Block, len(s.Blocks))
	for i, b := range s.Blocks {
		b.X -= dx
		b.Y -= dy
		out.Blocks[i] = b
	}
	out.Bounds = spiral.BoundingBox{Max: s.Bounds.Size()}
	return out
}

// Width returns the width of the bounds.
func (s Scene) Width() float64 { return s.Bounds.Width() }

// Height returns the height of the bounds.
func (s Scene) Height() float64 { return s.Bounds.Height() }

// Stats summarizes a scene.
type Stats struct {
	Blocks  int     `json:"blocks"`
	Skipped int     `json:"skipped"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Area    float64 `json:"area"` // sum of block areas
	Fill    float64 `json:"fill"` // Area / bounds area
}

// Stats computes summary statistics.
func (s Scene) Stats() Stats {
	st := Stats{Blocks: len(s.Blocks), Skipped: len(s.Skipped), Width: s.Width(), Height: s.Height()}
	for _, b := range s.Blocks {
		st.Area += b.Width * b.Height
	}
	if total := st.Width * st.Height; total > 0 {
		st.Fill = st.Area / total
	}
	return st
}
