// Package cli implements the pinwheel command-line interface.
//
// # Commands
//
//   - layout: place a box list and write the scene JSON
//   - render: render a scene file to SVG, PNG, PDF, XLSX, DXF or a tree diagram
//   - place: layout and render in one step
//   - animate: watch boxes being placed one per tick in the terminal
//   - serve: run the HTTP API
//   - cache, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"os"

	"github.com/matzehuels/pinwheel/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version and
// /healthz. It is called by main with values injected via ldflags.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the pinwheel CLI with the given context and returns an error
// if any command fails.
func Execute(ctx context.Context) error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
