package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
)

func TestSlice(t *testing.T) {
	items := []pio.Item{{Label: "a", Width: 1, Height: 2}, {Label: "b", Width: 3, Height: 4}}
	s := NewSlice(items)
	got, err := Drain(context.Background(), s)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("Drain mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.Next(context.Background()); err != io.EOF {
		t.Errorf("Next after end = %v, want io.EOF", err)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", s.Remaining())
	}
}

func TestSliceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSlice([]pio.Item{{Width: 1, Height: 1}}).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next = %v, want context.Canceled", err)
	}
}

func TestRandomDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Drain(ctx, NewRandom(42, WithLimit(25)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Drain(ctx, NewRandom(42, WithLimit(25)))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 25 {
		t.Fatalf("len = %d, want 25", len(a))
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different sequences:\n%s", diff)
	}
	for i, it := range a {
		if !inPalette(it) {
			t.Errorf("item %d (%gx%g) not in DemoSizes", i, it.Width, it.Height)
		}
	}
	if a[0].Label != "box 1" {
		t.Errorf("label = %q, want %q", a[0].Label, "box 1")
	}
}

func TestRandomCustomSizes(t *testing.T) {
	sizes := []pio.Item{{Width: 7, Height: 3}}
	got, err := Drain(context.Background(), NewRandom(1, WithLimit(3), WithSizes(sizes)))
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range got {
		if it.Width != 7 || it.Height != 3 {
			t.Errorf("item = %gx%g, want 7x3", it.Width, it.Height)
		}
	}
}

func inPalette(it pio.Item) bool {
	for _, s := range DemoSizes {
		if s.Width == it.Width && s.Height == it.Height {
			return true
		}
	}
	return false
}

func TestScript(t *testing.T) {
	src := `
function next(i) {
  switch (i) {
  case 0: return [10, 20];
  case 1: return [5.5, 6, "third"];
  case 2: return {width: 3, height: 4, label: "obj"};
  default: return null;
  }
}`
	s, err := NewScript("gen.js", src)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	got, err := Drain(context.Background(), s)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	want := []pio.Item{
		{Width: 10, Height: 20},
		{Label: "third", Width: 5.5, Height: 6},
		{Label: "obj", Width: 3, Height: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Drain mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		newErr  bool
		wantMsg string
	}{
		{"syntax", "function next(i) {", true, "gen.js"},
		{"no next", "var x = 1;", true, "next(i)"},
		{"bad shape", "function next(i) { return [1]; }", false, "got 1 elements"},
		{"non numeric", "function next(i) { return ['a', 'b']; }", false, "numbers"},
		{"zero size", "function next(i) { return [0, 5]; }", false, "next(0)"},
		{"throws", "function next(i) { throw new Error('boom'); }", false, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScript("gen.js", tt.src)
			if tt.newErr {
				if err == nil {
					t.Fatal("NewScript succeeded, want error")
				}
				if !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewScript: %v", err)
			}
			_, err = s.Next(context.Background())
			if err == nil {
				t.Fatal("Next succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestScriptInvalidSizeCode(t *testing.T) {
	s, err := NewScript("gen.js", "function next(i) { return [-1, 5]; }")
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Next(context.Background())
	if got := perrors.GetCode(err); got != perrors.ErrCodeInvalidBox {
		t.Errorf("code = %q, want %q", got, perrors.ErrCodeInvalidBox)
	}
}

func TestScriptFileNotFound(t *testing.T) {
	_, err := NewScriptFile("/nonexistent/gen.js")
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "boxes.csv")
	if err := os.WriteFile(csvPath, []byte("width,height\n3,4\n5,6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	jsPath := filepath.Join(dir, "gen.js")
	if err := os.WriteFile(jsPath, []byte("function next(i) { return i < 1 ? [7, 8] : null }"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want int
	}{
		{csvPath, 2},
		{jsPath, 1},
		{"", 4},
	}
	for _, tt := range tests {
		src, err := Open(tt.path, 1, WithLimit(4))
		if err != nil {
			t.Fatalf("Open(%q) error: %v", tt.path, err)
		}
		items, err := Drain(context.Background(), src)
		if err != nil {
			t.Fatalf("Drain(%q) error: %v", tt.path, err)
		}
		if len(items) != tt.want {
			t.Errorf("Open(%q) yielded %d items, want %d", tt.path, len(items), tt.want)
		}
	}
}
