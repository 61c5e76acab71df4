package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Item
	}{
		{
			name:  "wrapped objects",
			input: `{"boxes": [{"label": "a", "width": 100, "height": 80}, {"w": 5, "h": 6}]}`,
			want:  []Item{{Label: "a", Width: 100, Height: 80}, {Width: 5, Height: 6}},
		},
		{
			name:  "bare tuples",
			input: `[[10, 20], [3, 4, "small"]]`,
			want:  []Item{{Width: 10, Height: 20}, {Label: "small", Width: 3, Height: 4}},
		},
		{
			name:  "quantity",
			input: `[{"name": "q", "width": 1, "height": 2, "quantity": 3}]`,
			want:  []Item{{Label: "q", Width: 1, Height: 2}, {Label: "q", Width: 1, Height: 2}, {Label: "q", Width: 1, Height: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  perrors.Code
	}{
		{"malformed", `{`, perrors.ErrCodeInvalidFormat},
		{"wrong shape", `{"boxes": 3}`, perrors.ErrCodeInvalidFormat},
		{"missing height", `[{"width": 3}]`, perrors.ErrCodeInvalidFormat},
		{"zero width", `[[0, 3]]`, perrors.ErrCodeInvalidBox},
		{"negative height", `[{"width": 3, "height": -1}]`, perrors.ErrCodeInvalidBox},
		{"empty", `[]`, perrors.ErrCodeInvalidInput},
		{"bad quantity", `[{"width": 3, "height": 3, "quantity": -2}]`, perrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), FormatJSON)
			require.Error(t, err)
			assert.Equal(t, tt.code, perrors.GetCode(err), "error: %v", err)
		})
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Item
	}{
		{
			name:  "header",
			input: "Name,Width,Height,Qty\nshelf,600,300,2\ndoor,400,800,\n",
			want:  []Item{{Label: "shelf", Width: 600, Height: 300}, {Label: "shelf", Width: 600, Height: 300}, {Label: "door", Width: 400, Height: 800}},
		},
		{
			name:  "positional",
			input: "10,20\n30,40,big\n\n",
			want:  []Item{{Width: 10, Height: 20}, {Label: "big", Width: 30, Height: 40}},
		},
		{
			name:  "semicolon with decimal comma",
			input: "w;h\n1,5;2\n",
			want:  []Item{{Width: 1.5, Height: 2}},
		},
		{
			name:  "comments",
			input: "# generated\nh,w\n2,1\n",
			want:  []Item{{Width: 1, Height: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSVErrors(t *testing.T) {
	_, err := Read(strings.NewReader("label,width\na,3\n"), FormatCSV)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidFormat), "missing column: %v", err)

	_, err = Read(strings.NewReader("width,height\nabc,3\n"), FormatCSV)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidBox), "bad number: %v", err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadTOML(t *testing.T) {
	input := `
[[box]]
label = "a"
width = 10
height = 20

[[box]]
width = 5.5
height = 5
quantity = 2
`
	got, err := Read(strings.NewReader(input), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Label: "a", Width: 10, Height: 20},
		{Width: 5.5, Height: 5},
		{Width: 5.5, Height: 5},
	}, got)

	_, err = Read(strings.NewReader("[[box]]\nwidth = 1\n"), FormatTOML)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidBox), "missing height: %v", err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{{"Label", "Width", "Height"}, {"a", 100, 50}, {"b", 20, 30}}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := Read(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Label: "a", Width: 100, Height: 50}, {Label: "b", Width: 20, Height: 30}}, got)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"boxes.json", FormatJSON, false},
		{"BOXES.CSV", FormatCSV, false},
		{"list.tsv", FormatCSV, false},
		{"a/b.toml", FormatTOML, false},
		{"sheet.xlsx", FormatXLSX, false},
		{"part.dxf", FormatDXF, false},
		{"boxes", "", true},
		{"boxes.yaml", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, perrors.Is(err, perrors.ErrCodeFileNotFound), "error: %v", err)
}

func testScene(t *testing.T) scene.Scene {
	t.Helper()
	e := spiral.New()
	p := spiral.NewPacker(e, spiral.Right)
	_, _, err := p.PlaceAll([]spiral.Vec{spiral.V(10, 10), spiral.V(5, 5), spiral.V(5, 8)}, false)
	require.NoError(t, err)
	return scene.FromState(p.State(), []string{"root", "b", "c"}, e.Options())
}

func TestWriteXLSX(t *testing.T) {
	s := testScene(t)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(s, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPlacements, SheetSummary}, f.GetSheetList())
	rows, err := f.GetRows(SheetPlacements)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Index", "Label", "X", "Y", "Width", "Height", "Parent", "Direction"}, rows[0])
	assert.Equal(t, []string{"1", "b", "10", "0", "5", "5", "0", "right"}, rows[2])

	// The report is itself a readable box list.
	items, err := itemsFromRows(rows, "row")
	require.NoError(t, err)
	assert.Equal(t, Item{Label: "c", Width: 5, Height: 8}, items[2])
}

func TestWriteDXFRoundTrip(t *testing.T) {
	s := testScene(t)
	path := filepath.Join(t.TempDir(), "scene.dxf")
	require.NoError(t, WriteDXF(s, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	items, err := ReadFile(path)
	require.NoError(t, err)
	// Three blocks plus the bounds outline.
	require.Len(t, items, 4)
	assert.Equal(t, 10.0, items[0].Width)
	assert.Equal(t, 8.0, items[2].Height)
	assert.Equal(t, s.Width(), items[3].Width)
}
