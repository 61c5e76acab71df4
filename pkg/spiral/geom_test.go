package spiral

import "testing"

func TestPlacedBoxSide(t *testing.T) {
	b := PlacedBox{Position: V(2, 3), Size: V(10, 4)}
	tests := []struct {
		dir  Direction
		want Side
	}{
		{Right, Side{V(12, 3), V(12, 7)}},
		{Bottom, Side{V(2, 7), V(12, 7)}},
		{Left, Side{V(2, 3), V(2, 7)}},
		{Top, Side{V(2, 3), V(12, 3)}},
	}
	for _, tt := range tests {
		if got := b.Side(tt.dir); got != tt.want {
			t.Errorf("Side(%v) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	base := PlacedBox{Position: V(0, 0), Size: V(10, 10)}
	tests := []struct {
		name  string
		other PlacedBox
		want  bool
	}{
		{"identical", base, true},
		{"contained", PlacedBox{Position: V(2, 2), Size: V(3, 3)}, true},
		{"partial", PlacedBox{Position: V(5, 5), Size: V(10, 10)}, true},
		{"touching right", PlacedBox{Position: V(10, 0), Size: V(5, 5)}, false},
		{"touching bottom", PlacedBox{Position: V(3, 10), Size: V(5, 5)}, false},
		{"touching corner", PlacedBox{Position: V(10, 10), Size: V(5, 5)}, false},
		{"touching left", PlacedBox{Position: V(-5, 5), Size: V(5, 5)}, false},
		{"apart", PlacedBox{Position: V(20, 20), Size: V(5, 5)}, false},
		{"sub-unit intrusion", PlacedBox{Position: V(9.5, 0), Size: V(5, 5)}, false},
		{"one unit intrusion", PlacedBox{Position: V(8.5, 0), Size: V(5, 5)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("reverse Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersects(t *testing.T) {
	base := PlacedBox{Position: V(0, 0), Size: V(10, 10)}
	tests := []struct {
		name  string
		other PlacedBox
		want  bool
	}{
		{"identical", base, true},
		{"touching right", PlacedBox{Position: V(10, 0), Size: V(5, 5)}, false},
		{"touching corner", PlacedBox{Position: V(10, 10), Size: V(5, 5)}, false},
		{"sub-unit intrusion", PlacedBox{Position: V(9.5, 0), Size: V(5, 5)}, true},
		{"fractional touch", PlacedBox{Position: V(-0.6, 2.5), Size: V(0.6, 3)}, false},
		{"float noise", PlacedBox{Position: V(10 - 1e-12, 0), Size: V(5, 5)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("reverse Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundingBoxExpand(t *testing.T) {
	bb := BoundsOf(PlacedBox{Size: V(10, 10)})
	bb = bb.Expand(PlacedBox{Position: V(10, 0), Size: V(5, 5)})
	if want := (BoundingBox{Min: V(0, 0), Max: V(15, 10)}); bb != want {
		t.Fatalf("Expand = %v, want %v", bb, want)
	}
	bb = bb.Expand(PlacedBox{Position: V(-3, -4), Size: V(1, 1)})
	if want := (BoundingBox{Min: V(-3, -4), Max: V(15, 10)}); bb != want {
		t.Fatalf("Expand = %v, want %v", bb, want)
	}
	inner := bb.Expand(PlacedBox{Position: V(1, 1), Size: V(1, 1)})
	if inner != bb {
		t.Errorf("Expand with contained box = %v, want %v", inner, bb)
	}
	if got := bb.Width(); got != 18 {
		t.Errorf("Width() = %v, want 18", got)
	}
	if got := bb.Height(); got != 14 {
		t.Errorf("Height() = %v, want 14", got)
	}
	if got := (BoundingBox{}).AspectRatio(); got != 0 {
		t.Errorf("empty AspectRatio() = %v, want 0", got)
	}
}
