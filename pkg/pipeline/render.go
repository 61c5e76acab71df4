package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/render/sink"
	"github.com/matzehuels/pinwheel/pkg/render/tree"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, s scene.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	sinkOpts := buildSinkOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(s, sinkOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(s, sinkOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(s, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(s)
		case FormatXLSX:
			var buf bytes.Buffer
			err = pio.WriteXLSX(s, &buf)
			data = buf.Bytes()
		case FormatDXF:
			data, err = renderDXF(s)
		case FormatTree:
			data, err = tree.RenderSVG(ctx, tree.ToDOT(s, tree.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSinkOptions builds renderer options.
func buildSinkOptions(opts Options) []sink.Option {
	sinkOpts := []sink.Option{sink.WithLabels(!opts.NoLabels)}
	if opts.Margin != nil {
		sinkOpts = append(sinkOpts, sink.WithMargin(*opts.Margin))
	}
	if opts.Scale > 0 {
		sinkOpts = append(sinkOpts, sink.WithScale(opts.Scale))
	}
	return sinkOpts
}

// renderDXF writes the drawing to a temporary file, since the DXF writer
// only saves to paths, and returns its contents.
func renderDXF(s scene.Scene) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pinwheel-dxf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "scene.dxf")
	if err := pio.WriteDXF(s, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// RenderFromSceneData renders output from serialized scene data.
// This is useful when the scene was computed elsewhere (e.g., cached).
func RenderFromSceneData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	s, err := scene.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return Render(ctx, s, opts)
}
