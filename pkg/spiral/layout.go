package spiral

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Layout is the placement state: the placed boxes in placement order and the
// side availability of every box still open for attachment.
//
// The index of a box in the layout is its identity. Layout values are never
// modified after construction; each successful placement produces a new one,
// so a Layout may be read from several goroutines.
type Layout struct {
	boxes  []PlacedBox
	spaces map[int]AvailableSpace
	active []int // keys of spaces, ascending
}

// NewLayout returns an empty layout.
func NewLayout() Layout {
	return Layout{spaces: map[int]AvailableSpace{}}
}

// LayoutFrom builds a layout from explicit boxes and availability records.
// Entries of spaces must refer to indices of boxes; boxes without an entry are
// treated as exhausted.
func LayoutFrom(boxes []PlacedBox, spaces map[int]AvailableSpace) (Layout, error) {
	for id := range spaces {
		if id < 0 || id >= len(boxes) {
			return Layout{}, fmt.Errorf("available space for unknown box %d", id)
		}
	}
	return Layout{
		boxes:  slices.Clone(boxes),
		spaces: maps.Clone(spaces),
		active: slices.Sorted(maps.Keys(spaces)),
	}, nil
}

// Len returns the number of placed boxes.
func (l Layout) Len() int { return len(l.boxes) }

// Empty reports whether no box has been placed yet.
func (l Layout) Empty() bool { return len(l.boxes) == 0 }

// Box returns the box placed at index i.
func (l Layout) Box(i int) PlacedBox { return l.boxes[i] }

// Boxes returns a copy of the placed boxes in placement order.
func (l Layout) Boxes() []PlacedBox { return slices.Clone(l.boxes) }

// Space returns the availability record of box i. The boolean is false if the
// box has been dropped from the search set.
func (l Layout) Space(i int) (AvailableSpace, bool) {
	s, ok := l.spaces[i]
	return s, ok
}

// Spaces returns a copy of all availability records.
func (l Layout) Spaces() map[int]AvailableSpace { return maps.Clone(l.spaces) }

// Active returns the indices still in the search set, oldest first.
func (l Layout) Active() []int { return slices.Clone(l.active) }

// with returns a copy of l with box appended and the given space updates applied.
// The receiver is left untouched.
func (l Layout) with(box PlacedBox, space AvailableSpace, parent int, parentSpace AvailableSpace, pruned []int) Layout {
	next := Layout{
		boxes:  make([]PlacedBox, len(l.boxes), len(l.boxes)+1),
		spaces: maps.Clone(l.spaces),
	}
	copy(next.boxes, l.boxes)
	if next.spaces == nil {
		next.spaces = map[int]AvailableSpace{}
	}
	for _, id := range pruned {
		delete(next.spaces, id)
	}
	if parent >= 0 {
		next.spaces[parent] = parentSpace
	}
	next.boxes = append(next.boxes, box)
	id := len(next.boxes) - 1
	next.spaces[id] = space

	// pruned is ascending like active, and new ids are always the largest.
	next.active = make([]int, 0, len(l.active)-len(pruned)+1)
	p := 0
	for _, a := range l.active {
		if p < len(pruned) && pruned[p] == a {
			p++
			continue
		}
		next.active = append(next.active, a)
	}
	next.active = append(next.active, id)
	return next
}

// layoutJSON is the serialized form of a Layout.
type layoutJSON struct {
	Boxes  []PlacedBox            `json:"boxes"`
	Spaces map[int]AvailableSpace `json:"spaces"`
}

// MarshalJSON encodes the layout.
func (l Layout) MarshalJSON() ([]byte, error) {
	boxes := l.boxes
	if boxes == nil {
		boxes = []PlacedBox{}
	}
	spaces := l.spaces
	if spaces == nil {
		spaces = map[int]AvailableSpace{}
	}
	return json.Marshal(layoutJSON{Boxes: boxes, Spaces: spaces})
}

// UnmarshalJSON decodes a layout produced by MarshalJSON.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var raw layoutJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := LayoutFrom(raw.Boxes, raw.Spaces)
	if err != nil {
		return err
	}
	if decoded.spaces == nil {
		decoded.spaces = map[int]AvailableSpace{}
	}
	*l = decoded
	return nil
}
