package spiral

import (
	"encoding/json"
	"fmt"
	"strings"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
)

// Direction is one of the four sides of a box. The declaration order is the
// search cycle: Right, Bottom, Left, Top.
type Direction uint8

const (
	Right Direction = iota
	Bottom
	Left
	Top
)

// Directions lists every direction in cycle order.
var Directions = [4]Direction{Right, Bottom, Left, Top}

var directionNames = [4]string{"right", "bottom", "left", "top"}

// Opposite returns the direction facing d.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Next returns the direction following d in the cycle.
func (d Direction) Next() Direction {
	return (d + 1) % 4
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool { return d <= Top }

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses a direction name. Matching is case-insensitive and
// accepts the single-letter forms r, b, l and t.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r":
		return Right, nil
	case "bottom", "b", "down":
		return Bottom, nil
	case "left", "l":
		return Left, nil
	case "top", "t", "up":
		return Top, nil
	}
	return 0, perrors.New(perrors.ErrCodeInvalidDirection, "unknown direction %q (must be one of: right, bottom, left, top)", s)
}

// Rotation returns the cycle Right, Bottom, Left, Top rotated to begin at start.
func Rotation(start Direction) [4]Direction {
	var out [4]Direction
	for i := range out {
		out[i] = (start + Direction(i)) % 4
	}
	return out
}

// AvailableSpace records, per direction, whether a child may still be attached
// to that side of a placed box.
type AvailableSpace [4]bool

// AllAvailable returns a record with every side free.
func AllAvailable() AvailableSpace {
	return AvailableSpace{true, true, true, true}
}

// Has reports whether side d is still free.
func (a AvailableSpace) Has(d Direction) bool {
	return d.Valid() && a[d]
}

// Without returns a copy of a with side d consumed.
func (a AvailableSpace) Without(d Direction) AvailableSpace {
	if d.Valid() {
		a[d] = false
	}
	return a
}

// Exhausted reports whether every side has been consumed.
func (a AvailableSpace) Exhausted() bool {
	return !a[Right] && !a[Bottom] && !a[Left] && !a[Top]
}

// Free returns the free sides in cycle order.
func (a AvailableSpace) Free() []Direction {
	var out []Direction
	for _, d := range Directions {
		if a[d] {
			out = append(out, d)
		}
	}
	return out
}

// MarshalJSON encodes the record as an object keyed by direction name.
func (a AvailableSpace) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"right":%t,"bottom":%t,"left":%t,"top":%t}`,
		a[Right], a[Bottom], a[Left], a[Top])), nil
}

// UnmarshalJSON decodes an object keyed by direction name. Missing keys are
// treated as consumed.
func (a *AvailableSpace) UnmarshalJSON(data []byte) error {
	var m map[Direction]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode available space: %w", err)
	}
	*a = AvailableSpace{}
	for d, free := range m {
		a[d] = free
	}
	return nil
}
