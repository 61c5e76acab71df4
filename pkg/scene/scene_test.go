package scene

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

func packed(t *testing.T) (spiral.State, spiral.Options) {
	t.Helper()
	e := spiral.New()
	p := spiral.NewPacker(e, spiral.Right)
	for _, s := range []float64{10, 5, 5, 5} {
		if _, err := p.Place(spiral.V(s, s)); err != nil {
			t.Fatal(err)
		}
	}
	return p.State(), e.Options()
}

func TestFromState(t *testing.T) {
	st, opts := packed(t)
	s := FromState(st, []string{"base", "", "c"}, opts)

	if len(s.Blocks) != 4 {
		t.Fatalf("Blocks = %d, want 4", len(s.Blocks))
	}
	want := Block{Index: 2, Label: "c", X: 5, Y: 10, Width: 5, Height: 5, Parent: 0, Direction: spiral.Bottom}
	if diff := cmp.Diff(want, s.Blocks[2]); diff != "" {
		t.Errorf("block 2 mismatch (-want +got):\n%s", diff)
	}
	if got := s.Blocks[1].DisplayLabel(); got != "#1" {
		t.Errorf("DisplayLabel() = %q, want #1", got)
	}
	if got := s.Blocks[3].Label; got != "" {
		t.Errorf("block 3 label = %q, want empty", got)
	}
	if s.Hint != spiral.Top {
		t.Errorf("Hint = %v, want top", s.Hint)
	}
}

func TestStateRoundTrip(t *testing.T) {
	st, opts := packed(t)
	s := FromState(st, nil, opts)

	back, err := s.State()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(st.Layout.Boxes(), back.Layout.Boxes()); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(st.Layout.Spaces(), back.Layout.Spaces()); diff != "" {
		t.Errorf("spaces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(st.Parents, back.Parents); diff != "" {
		t.Errorf("parents mismatch (-want +got):\n%s", diff)
	}
	if back.Hint != st.Hint || back.Bounds != st.Bounds {
		t.Errorf("hint/bounds = %v/%v, want %v/%v", back.Hint, back.Bounds, st.Hint, st.Bounds)
	}
}

func TestNormalized(t *testing.T) {
	st, opts := packed(t)
	n := FromState(st, nil, opts).Normalized()

	if n.Bounds.Min != spiral.V(0, 0) || n.Bounds.Max != spiral.V(15, 20) {
		t.Errorf("Bounds = %v, want [(0, 0), (15, 20)]", n.Bounds)
	}
	if b := n.Blocks[0]; b.X != 0 || b.Y != 5 {
		t.Errorf("block 0 at (%v, %v), want (0, 5)", b.X, b.Y)
	}
	if b := n.Blocks[3]; b.X != 5 || b.Y != 0 {
		t.Errorf("block 3 at (%v, %v), want (5, 0)", b.X, b.Y)
	}
}

func TestStats(t *testing.T) {
	st, opts := packed(t)
	stats := FromState(st, nil, opts).Stats()
	if stats.Blocks != 4 || stats.Area != 175 {
		t.Errorf("Stats = %+v, want 4 blocks with area 175", stats)
	}
	if want := 175.0 / 300.0; stats.Fill != want {
		t.Errorf("Fill = %v, want %v", stats.Fill, want)
	}
}

func TestFileRoundTrip(t *testing.T) {
	st, opts := packed(t)
	s := FromState(st, []string{"a", "b", "c", "d"}, opts)
	s.Skipped = []SkippedBox{{Input: 7, Width: 3, Height: 4}}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteFile(s, path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("scene mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{"},
		{"bad version", `{"version": 9, "hint": "right"}`},
		{"bad direction", `{"version": 1, "hint": "north"}`},
		{"space for unknown block", `{"version": 1, "hint": "right", "blocks": [], "spaces": {"3": {"right": true}}}`},
		{"block outside bounds", `{"version": 1, "hint": "right", "bounds": {"min": {"x": 0, "y": 0}, "max": {"x": 1, "y": 1}},
			"blocks": [{"index": 0, "x": 0, "y": 0, "width": 5, "height": 5, "parent": -1, "direction": "right"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
				t.Errorf("Read() error = %v, want INVALID_FORMAT", err)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEmptyScene(t *testing.T) {
	s := New(spiral.DefaultOptions(), spiral.Left)
	data, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Hint != spiral.Left || len(back.Blocks) != 0 {
		t.Errorf("empty scene round trip = %+v", back)
	}
}
