package spiral

import (
	"encoding/json"
	"maps"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLayoutFrom(t *testing.T) {
	boxes := []PlacedBox{{Size: V(1, 1)}, {Position: V(1, 0), Size: V(1, 1)}}
	if _, err := LayoutFrom(boxes, map[int]AvailableSpace{2: AllAvailable()}); err == nil {
		t.Error("LayoutFrom with unknown id succeeded")
	}

	spaces := map[int]AvailableSpace{1: AllAvailable().Without(Left)}
	l, err := LayoutFrom(boxes, spaces)
	if err != nil {
		t.Fatal(err)
	}
	boxes[0].Size = V(9, 9)
	spaces[0] = AllAvailable()
	if l.Box(0).Size != V(1, 1) {
		t.Error("LayoutFrom shares the boxes slice")
	}
	if _, ok := l.Space(0); ok {
		t.Error("LayoutFrom shares the spaces map")
	}
	if diff := cmp.Diff([]int{1}, l.Active()); diff != "" {
		t.Errorf("Active() mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutActiveTracksSpaces(t *testing.T) {
	run := randomRun(t, New(), 7, 200)
	for k, res := range run {
		l := res.Layout
		want := slices.Sorted(maps.Keys(l.Spaces()))
		if diff := cmp.Diff(want, l.Active()); diff != "" {
			t.Fatalf("placement %d: Active() out of sync with spaces (-want +got):\n%s", k, diff)
		}
	}
}

func TestLayoutActivePrunesExhausted(t *testing.T) {
	boxes := []PlacedBox{{Size: V(10, 10)}, {Position: V(10, 0), Size: V(10, 10)}}
	l, err := LayoutFrom(boxes, map[int]AvailableSpace{0: {}, 1: AllAvailable().Without(Left)})
	if err != nil {
		t.Fatal(err)
	}
	res, err := PlaceNext(Box{Size: V(5, 5)}, l, Right, BoundingBox{Max: V(20, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Parent != 1 || res.Box.Position != V(20, 0) {
		t.Errorf("placed %v on %d, want (20, 0) on 1", res.Box.Position, res.Parent)
	}
	if diff := cmp.Diff([]int{1, 2}, res.Layout.Active()); diff != "" {
		t.Errorf("Active() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, l.Active()); diff != "" {
		t.Errorf("input Active() changed (-want +got):\n%s", diff)
	}
}

func TestLayoutJSON(t *testing.T) {
	p := NewPacker(nil, Bottom)
	for _, s := range []float64{10, 5, 5, 5} {
		if _, err := p.Place(V(s, s)); err != nil {
			t.Fatal(err)
		}
	}
	l := p.Layout()

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var back Layout
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(l.Boxes(), back.Boxes()); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(l.Spaces(), back.Spaces()); diff != "" {
		t.Errorf("spaces mismatch (-want +got):\n%s", diff)
	}

	empty, err := json.Marshal(NewLayout())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(empty); got != `{"boxes":[],"spaces":{}}` {
		t.Errorf("empty layout = %s", got)
	}
}
