package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
)

// maxQuantity bounds the quantity column so a typo cannot expand into
// millions of boxes.
const maxQuantity = 10000

// =============================================================================
// JSON
// =============================================================================

type jsonItem struct {
	Label    string   `json:"label"`
	Name     string   `json:"name"`
	Width    *float64 `json:"width"`
	Height   *float64 `json:"height"`
	W        *float64 `json:"w"`
	H        *float64 `json:"h"`
	Quantity int      `json:"quantity"`
}

func readJSON(r io.Reader) ([]Item, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode box list")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		var wrapped struct {
			Boxes []json.RawMessage `json:"boxes"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "box list must be an array or an object with a \"boxes\" array")
		}
		elems = wrapped.Boxes
	}

	var items []Item
	for i, elem := range elems {
		parsed, n, err := parseJSONElem(elem)
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "box %d: %v", i, err)
		}
		if err := validateAll([]Item{parsed}, func(int) string { return fmt.Sprintf("box %d", i) }); err != nil {
			return nil, err
		}
		for range n {
			items = append(items, parsed)
		}
	}
	return items, nil
}

// parseJSONElem accepts [w, h], [w, h, "label"] or an object.
func parseJSONElem(elem json.RawMessage) (Item, int, error) {
	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tuple []any
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return Item{}, 0, err
		}
		if len(tuple) < 2 || len(tuple) > 3 {
			return Item{}, 0, fmt.Errorf("expected [width, height] or [width, height, label]")
		}
		w, ok1 := tuple[0].(float64)
		h, ok2 := tuple[1].(float64)
		if !ok1 || !ok2 {
			return Item{}, 0, fmt.Errorf("width and height must be numbers")
		}
		it := Item{Width: w, Height: h}
		if len(tuple) == 3 {
			label, ok := tuple[2].(string)
			if !ok {
				return Item{}, 0, fmt.Errorf("label must be a string")
			}
			it.Label = label
		}
		return it, 1, nil
	}

	var obj jsonItem
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Item{}, 0, err
	}
	it := Item{Label: obj.Label}
	if it.Label == "" {
		it.Label = obj.Name
	}
	switch {
	case obj.Width != nil:
		it.Width = *obj.Width
	case obj.W != nil:
		it.Width = *obj.W
	default:
		return Item{}, 0, fmt.Errorf("missing width")
	}
	switch {
	case obj.Height != nil:
		it.Height = *obj.Height
	case obj.H != nil:
		it.Height = *obj.H
	default:
		return Item{}, 0, fmt.Errorf("missing height")
	}
	n, err := quantity(obj.Quantity)
	return it, n, err
}

func quantity(q int) (int, error) {
	switch {
	case q == 0:
		return 1, nil
	case q < 0 || q > maxQuantity:
		return 0, fmt.Errorf("quantity must be between 1 and %d, got %d", maxQuantity, q)
	}
	return q, nil
}

// =============================================================================
// CSV and XLSX rows
// =============================================================================

// columns maps column roles to indices; -1 means absent.
type columns struct {
	label, width, height, quantity int
}

var headerAliases = map[string][]string{
	"label":    {"label", "name", "id", "description", "item"},
	"width":    {"width", "w", "x", "length"},
	"height":   {"height", "h", "y", "depth"},
	"quantity": {"quantity", "qty", "count", "pcs"},
}

// detectColumns inspects the first row. It returns the mapping and whether
// the row is a header.
func detectColumns(row []string) (columns, bool) {
	cols := columns{label: -1, width: -1, height: -1, quantity: -1}
	found := false
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, a := range aliases {
				if name != a {
					continue
				}
				found = true
				switch role {
				case "label":
					cols.label = i
				case "width":
					cols.width = i
				case "height":
					cols.height = i
				case "quantity":
					cols.quantity = i
				}
			}
		}
	}
	if found {
		return cols, true
	}
	// Positional: width, height[, label]
	return columns{width: 0, height: 1, label: 2, quantity: -1}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber accepts "12.5" and the decimal comma form "12,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// itemsFromRows is shared by the CSV and XLSX readers.
func itemsFromRows(rows [][]string, rowPrefix string) ([]Item, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols, header := detectColumns(rows[0])
	start := 0
	if header {
		start = 1
		var missing []string
		if cols.width < 0 {
			missing = append(missing, "width")
		}
		if cols.height < 0 {
			missing = append(missing, "height")
		}
		if len(missing) > 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "required columns not found in header: %s", strings.Join(missing, ", "))
		}
	}

	var items []Item
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		where := fmt.Sprintf("%s %d", rowPrefix, i+1)
		w, err := parseNumber(cell(row, cols.width))
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidBox, "%s: invalid width %q", where, cell(row, cols.width))
		}
		h, err := parseNumber(cell(row, cols.height))
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidBox, "%s: invalid height %q", where, cell(row, cols.height))
		}
		n := 1
		if q := cell(row, cols.quantity); q != "" {
			parsed, err := strconv.Atoi(q)
			if err == nil {
				n, err = quantity(parsed)
			}
			if err != nil {
				return nil, perrors.New(perrors.ErrCodeInvalidInput, "%s: invalid quantity %q", where, q)
			}
		}
		it := Item{Label: cell(row, cols.label), Width: w, Height: h}
		if err := validateAll([]Item{it}, func(int) string { return where }); err != nil {
			return nil, err
		}
		for range n {
			items = append(items, it)
		}
	}
	return items, nil
}

func readCSV(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "parse csv")
	}
	return itemsFromRows(rows, "line")
}

// detectDelimiter picks the delimiter among comma, semicolon, tab and pipe
// that splits the first line into the most fields.
func detectDelimiter(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readXLSX(r io.Reader) ([]Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "read sheet %s", sheets[0])
	}
	return itemsFromRows(rows, "row")
}

// =============================================================================
// TOML
// =============================================================================

type tomlList struct {
	Box []struct {
		Label    string  `toml:"label"`
		Width    float64 `toml:"width"`
		Height   float64 `toml:"height"`
		Quantity int     `toml:"quantity"`
	} `toml:"box"`
}

func readTOML(r io.Reader) ([]Item, error) {
	var list tomlList
	if _, err := toml.NewDecoder(r).Decode(&list); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode toml box list")
	}
	var items []Item
	for i, b := range list.Box {
		where := fmt.Sprintf("box %d", i)
		it := Item{Label: b.Label, Width: b.Width, Height: b.Height}
		if err := validateAll([]Item{it}, func(int) string { return where }); err != nil {
			return nil, err
		}
		n, err := quantity(b.Quantity)
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "%s: %v", where, err)
		}
		for range n {
			items = append(items, it)
		}
	}
	return items, nil
}

// =============================================================================
// DXF
// =============================================================================

// readDXF buffers r to a temporary file because the DXF decoder reads from
// paths.
func readDXF(r io.Reader) ([]Item, error) {
	tmp, err := os.CreateTemp("", "pinwheel-*.dxf")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return readDXFFile(tmp.Name())
}

func readDXFFile(path string) ([]Item, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "box list %s", path)
	}
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "open dxf")
	}

	var items []Item
	for _, ent := range drawing.Entities() {
		lw, ok := ent.(*entity.LwPolyline)
		if !ok || len(lw.Vertices) < 3 {
			continue
		}
		minX, minY := lw.Vertices[0][0], lw.Vertices[0][1]
		maxX, maxY := minX, minY
		for _, v := range lw.Vertices[1:] {
			minX, maxX = min(minX, v[0]), max(maxX, v[0])
			minY, maxY = min(minY, v[1]), max(maxY, v[1])
		}
		it := Item{Label: fmt.Sprintf("shape %d", len(items)+1), Width: maxX - minX, Height: maxY - minY}
		if it.Width < 0.01 || it.Height < 0.01 {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "no closed polylines found in %s", path)
	}
	if err := validateAll(items, func(i int) string { return fmt.Sprintf("shape %d", i+1) }); err != nil {
		return nil, err
	}
	return items, nil
}
