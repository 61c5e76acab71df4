package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// placeCommand creates the one-shot command: box list in, artifacts out.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		output      string
		inputFormat string
		saveScene   bool
		noCache     bool
		refresh     bool
		engine      engineFlags
		render      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "place [boxes]",
		Short: "Place a box list and render it in one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			engine.apply(cmd, &opts)
			render.apply(cmd, &opts)
			opts.Input = args[0]
			opts.InputFormat = inputFormat
			opts.Refresh = refresh
			if opts.Input == "-" {
				opts.Reader = cmd.InOrStdin()
				if output == "" {
					output = "pinwheel"
				}
			}
			return c.runPlace(cmd.Context(), opts, output, saveScene, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> without extension)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "box list format: json, csv, toml, xlsx, dxf")
	cmd.Flags().BoolVar(&saveScene, "save-scene", false, "also write <output>.scene.json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	engine.register(cmd)
	render.register(cmd)

	return cmd
}

func (c *CLI) runPlace(ctx context.Context, opts pipeline.Options, output string, saveScene, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Placing boxes...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Placement failed")
		return err
	}
	spinner.Stop()

	base := basePath(output, opts.Input)
	paths, err := writeArtifacts(base, result.Artifacts)
	if err != nil {
		return err
	}
	if saveScene {
		p := base + ".scene.json"
		if err := scene.WriteFile(result.Scene, p); err != nil {
			return fmt.Errorf("write scene: %w", err)
		}
		paths = append(paths, p)
	}

	printSuccess("Placed %d of %d boxes", result.Stats.Placed, result.Stats.Boxes)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Scene.Stats(), result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printSkipped(result.Scene.Skipped)
	return nil
}
