package io

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/matzehuels/pinwheel/pkg/scene"
)

// Sheet names used by WriteXLSX.
const (
	SheetPlacements = "Placements"
	SheetSummary    = "Summary"
)

var placementHeader = []any{"Index", "Label", "X", "Y", "Width", "Height", "Parent", "Direction"}

// WriteXLSX writes a placement report workbook to w. The first sheet lists
// every block in placement order; the second summarizes the scene.
func WriteXLSX(s scene.Scene, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPlacements); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if err := f.SetSheetRow(SheetPlacements, "A1", &placementHeader); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetCellStyle(SheetPlacements, "A1", "H1", bold); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	for i, b := range s.Blocks {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		parent := any(b.Parent)
		if b.Parent < 0 {
			parent = ""
		}
		row := []any{b.Index, b.Label, b.X, b.Y, b.Width, b.Height, parent, b.Direction.String()}
		if err := f.SetSheetRow(SheetPlacements, cellRef, &row); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	if err := f.SetColWidth(SheetPlacements, "A", "H", 12); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	stats := s.Stats()
	summary := [][]any{
		{"Blocks", stats.Blocks},
		{"Skipped", stats.Skipped},
		{"Width", stats.Width},
		{"Height", stats.Height},
		{"Block area", stats.Area},
		{"Fill", stats.Fill},
		{"Next direction", s.Hint.String()},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

// DXF layer names used by WriteDXF.
const (
	LayerBlocks = "BLOCKS"
	LayerBounds = "BOUNDS"
)

// WriteDXF writes the outline of every block as a closed polyline on layer
// BLOCKS and the scene bounds on layer BOUNDS. Y is negated so the drawing
// is not mirrored in CAD tools, whose Y axis points up.
func WriteDXF(s scene.Scene, path string) error {
	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerBounds, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	if _, err := d.AddLayer(LayerBlocks, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	for _, b := range s.Blocks {
		if _, err := d.LwPolyline(true, rect(b.X, b.Y, b.Width, b.Height)...); err != nil {
			return fmt.Errorf("dxf: block %d: %w", b.Index, err)
		}
	}
	if err := d.ChangeLayer(LayerBounds); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	bb := s.Bounds
	if _, err := d.LwPolyline(true, rect(bb.Min.X, bb.Min.Y, bb.Width(), bb.Height())...); err != nil {
		return fmt.Errorf("dxf: bounds: %w", err)
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("dxf: save %s: %w", path, err)
	}
	return nil
}

// rect returns the corners of a screen-space rectangle in DXF coordinates.
func rect(x, y, w, h float64) [][]float64 {
	return [][]float64{
		{x, -y},
		{x + w, -y},
		{x + w, -(y + h)},
		{x, -(y + h)},
	}
}
