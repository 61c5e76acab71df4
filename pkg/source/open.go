package source

import (
	"path/filepath"
	"strings"

	pio "github.com/matzehuels/pinwheel/pkg/io"
)

// Open returns a source for path: a JavaScript generator for .js files,
// otherwise the box list read from the file. An empty path gives the random
// demo source seeded with seed.
func Open(path string, seed uint64, opts ...RandomOption) (Source, error) {
	if path == "" {
		return NewRandom(seed, opts...), nil
	}
	if strings.EqualFold(filepath.Ext(path), ".js") {
		return NewScriptFile(path)
	}
	items, err := pio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSlice(items), nil
}
