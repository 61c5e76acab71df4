package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// renderCommand creates the render command: scene JSON in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		render  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [scene.json]",
		Short: "Render a scene to SVG, PNG, PDF, XLSX, DXF or a tree diagram",
		Long: `Render a scene produced by 'pinwheel layout'.

Multiple formats may be given at once (-f svg,png,xlsx). Files are written next
to the scene unless -o names a base path. The "tree" format draws which box
each box is attached to, using Graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			render.apply(cmd, &opts)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> without extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	render.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	s, err := scene.ReadFile(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded scene", "path", input, "blocks", len(s.Blocks))

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, s, opts)
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", opts.Formats, "cached", hit)

	paths, err := writeArtifacts(basePath(output, input), artifacts)
	if err != nil {
		return err
	}
	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(s.Stats(), hit)
	return nil
}

// writeArtifacts writes each artifact to base.<ext> and returns the paths in
// format order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + pipeline.Extension(f)
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
