// Package fonts provides the embedded label font for raster rendering.
//
// The Go font family ships with golang.org/x/image, so PNG labels look the
// same on every machine without a system font lookup.
package fonts

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the CSS font-family used for vector labels.
const Family = "'Go', 'Helvetica Neue', Arial, sans-serif"

var (
	parsed    *truetype.Font
	parseErr  error
	parseOnce sync.Once

	facesMu sync.Mutex
	faces   = map[int]font.Face{}
)

func regular() (*truetype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = truetype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Label returns the regular face at the given size in points, rounded to the
// nearest half point. Faces are cached and shared, so callers must not close
// them.
func Label(points float64) (font.Face, error) {
	if points <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %g", points)
	}
	f, err := regular()
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	key := int(math.Round(points * 2))
	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faces[key]; ok {
		return face, nil
	}
	face := truetype.NewFace(f, &truetype.Options{Size: float64(key) / 2, Hinting: font.HintingFull})
	faces[key] = face
	return face, nil
}
