package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// Item is one box to place.
type Item struct {
	Label  string  `json:"label,omitempty" toml:"label"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Size returns the item size as an engine vector.
func (it Item) Size() spiral.Vec { return spiral.V(it.Width, it.Height) }

// Validate checks the item size and label.
func (it Item) Validate() error {
	if err := perrors.ValidateBoxSize(it.Width, it.Height); err != nil {
		return err
	}
	return perrors.ValidateLabel(it.Label)
}

// Format identifies a box list encoding.
type Format string

// Supported box list formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTOML Format = "toml"
	FormatXLSX Format = "xlsx"
	FormatDXF  Format = "dxf"
)

// Formats lists the supported input formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatTOML, FormatXLSX, FormatDXF}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatJSON, FormatCSV, FormatTOML, FormatXLSX, FormatDXF:
		return f, nil
	case "xls":
		return FormatXLSX, nil
	case "tsv":
		return FormatCSV, nil
	}
	return "", perrors.New(perrors.ErrCodeInvalidFormat, "unsupported box list format %q", s)
}

// DetectFormat returns the format implied by the file extension of path.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", perrors.New(perrors.ErrCodeInvalidFormat, "cannot detect format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// ReadFile reads a box list from path, detecting the format from its
// extension.
func ReadFile(path string) ([]Item, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return ReadFileAs(path, format)
}

// ReadFileAs reads a box list from path in the given format.
func ReadFileAs(path string, format Format) ([]Item, error) {
	if format == FormatDXF {
		return readDXFFile(path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "box list %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a box list in the given format from r. Read does not close r.
func Read(r io.Reader, format Format) ([]Item, error) {
	var (
		items []Item
		err   error
	)
	switch format {
	case FormatJSON:
		items, err = readJSON(r)
	case FormatCSV:
		items, err = readCSV(r)
	case FormatTOML:
		items, err = readTOML(r)
	case FormatXLSX:
		items, err = readXLSX(r)
	case FormatDXF:
		items, err = readDXF(r)
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported box list format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "box list is empty")
	}
	return items, nil
}

// Sizes returns the sizes of items in order.
func Sizes(items []Item) []spiral.Vec {
	out := make([]spiral.Vec, len(items))
	for i, it := range items {
		out[i] = it.Size()
	}
	return out
}

// Labels returns the labels of items in order.
func Labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// validateAll validates items, naming the offending entry with where(i).
func validateAll(items []Item, where func(i int) string) error {
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return perrors.New(perrors.GetCode(err), "%s: %s", where(i), perrors.UserMessage(err))
		}
	}
	return nil
}
