package spiral

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func exhaustedState(t *testing.T) State {
	t.Helper()
	box := PlacedBox{Size: V(10, 10)}
	l, err := LayoutFrom([]PlacedBox{box}, map[int]AvailableSpace{0: {}})
	if err != nil {
		t.Fatal(err)
	}
	return State{Layout: l, Hint: Right, Bounds: BoundsOf(box), Parents: []int{-1}, Directions: []Direction{Right}}
}

func TestPackerPlace(t *testing.T) {
	p := NewPacker(nil, Right)
	for _, s := range []float64{10, 5, 5} {
		if _, err := p.Place(V(s, s)); err != nil {
			t.Fatal(err)
		}
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if p.Hint() != Bottom {
		t.Errorf("Hint() = %v, want bottom", p.Hint())
	}
	st := p.State()
	if diff := cmp.Diff([]int{-1, 0, 0}, st.Parents); diff != "" {
		t.Errorf("Parents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Direction{Right, Right, Bottom}, st.Directions); diff != "" {
		t.Errorf("Directions mismatch (-want +got):\n%s", diff)
	}
	if err := st.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPackerPlaceFailureKeepsState(t *testing.T) {
	p := NewPacker(nil, Right)
	if err := p.Restore(exhaustedState(t)); err != nil {
		t.Fatal(err)
	}
	before := p.State()

	if _, err := p.Place(V(1, 1)); !errors.Is(err, ErrUnplaceable) {
		t.Fatalf("Place() error = %v, want ErrUnplaceable", err)
	}
	after := p.State()
	if after.Len() != before.Len() || after.Bounds != before.Bounds || after.Hint != before.Hint {
		t.Errorf("state changed after failure: %+v -> %+v", before, after)
	}
}

func TestPackerPlaceAll(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		p := NewPacker(nil, Right)
		if err := p.Restore(exhaustedState(t)); err != nil {
			t.Fatal(err)
		}
		placed, skipped, err := p.PlaceAll([]Vec{V(1, 1), V(2, 2)}, true)
		if err != nil {
			t.Fatalf("PlaceAll() error = %v", err)
		}
		if len(placed) != 0 {
			t.Errorf("placed = %d, want 0", len(placed))
		}
		if diff := cmp.Diff([]int{0, 1}, skipped); diff != "" {
			t.Errorf("skipped mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stop", func(t *testing.T) {
		p := NewPacker(nil, Right)
		if err := p.Restore(exhaustedState(t)); err != nil {
			t.Fatal(err)
		}
		_, _, err := p.PlaceAll([]Vec{V(1, 1), V(2, 2)}, false)
		if !errors.Is(err, ErrUnplaceable) {
			t.Errorf("PlaceAll() error = %v, want ErrUnplaceable", err)
		}
	})

	t.Run("all placed", func(t *testing.T) {
		p := NewPacker(New(), Top)
		placed, skipped, err := p.PlaceAll([]Vec{V(100, 100), V(150, 80), V(120, 90), V(80, 130)}, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(placed) != 4 || len(skipped) != 0 {
			t.Errorf("placed, skipped = %d, %d, want 4, 0", len(placed), len(skipped))
		}
	})
}

func TestPackerStateIsolation(t *testing.T) {
	p := NewPacker(nil, Right)
	p.Place(V(10, 10))
	p.Place(V(5, 5))

	st := p.State()
	st.Parents[1] = 99
	if got := p.State().Parents[1]; got != 0 {
		t.Errorf("snapshot shares memory with packer: parent = %d", got)
	}

	// Placing from a restored snapshot must not affect the first packer.
	q := NewPacker(nil, Right)
	if err := q.Restore(p.State()); err != nil {
		t.Fatal(err)
	}
	q.Place(V(5, 5))
	if p.Len() != 2 || q.Len() != 3 {
		t.Errorf("Len() = %d, %d, want 2, 3", p.Len(), q.Len())
	}
}

func TestStateJSONResume(t *testing.T) {
	sizes := []Vec{V(100, 100), V(150, 80), V(120, 90), V(80, 130), V(110, 110), V(50, 50), V(75, 35)}

	direct := NewPacker(nil, Right)
	if _, _, err := direct.PlaceAll(sizes, false); err != nil {
		t.Fatal(err)
	}

	half := NewPacker(nil, Right)
	if _, _, err := half.PlaceAll(sizes[:3], false); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(half.State())
	if err != nil {
		t.Fatal(err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	resumed := NewPacker(nil, Right)
	if err := resumed.Restore(st); err != nil {
		t.Fatal(err)
	}
	if _, _, err := resumed.PlaceAll(sizes[3:], false); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(direct.Layout().Boxes(), resumed.Layout().Boxes()); diff != "" {
		t.Errorf("resumed layout differs (-direct +resumed):\n%s", diff)
	}
	if diff := cmp.Diff(direct.Layout().Spaces(), resumed.Layout().Spaces()); diff != "" {
		t.Errorf("resumed spaces differ (-direct +resumed):\n%s", diff)
	}
	if direct.Bounds() != resumed.Bounds() || direct.Hint() != resumed.Hint() {
		t.Errorf("bounds/hint = %v/%v, want %v/%v", resumed.Bounds(), resumed.Hint(), direct.Bounds(), direct.Hint())
	}
}

func TestStateValidate(t *testing.T) {
	valid := exhaustedState(t)
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"bad hint", func(s *State) { s.Hint = 9 }},
		{"missing parents", func(s *State) { s.Parents = nil }},
		{"first has parent", func(s *State) { s.Parents = []int{0} }},
		{"outside bounds", func(s *State) { s.Bounds = BoundingBox{Max: V(5, 5)} }},
		{"bad direction", func(s *State) { s.Directions = []Direction{7} }},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid state: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Parents = []int{-1}
			s.Directions = []Direction{Right}
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
