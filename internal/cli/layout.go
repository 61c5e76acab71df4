package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

// maxSkippedShown bounds the skipped boxes listed after a run.
const maxSkippedShown = 5

// layoutCommand creates the layout command: box list in, scene JSON out.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		inputFormat string
		noCache     bool
		engine      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [boxes]",
		Short: "Place a box list and write the scene",
		Long: `Place a box list and write the resulting scene as JSON.

The box list may be JSON, CSV, TOML, XLSX or DXF; the format is taken from the
file extension unless --input-format is given. Use "-" to read from stdin.
The scene can be rendered later with 'pinwheel render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.PipelineOptions()
			engine.apply(cmd, &opts)
			opts.Input = args[0]
			opts.InputFormat = inputFormat
			if opts.Input == "-" {
				opts.Reader = cmd.InOrStdin()
			}
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (default: <input>.scene.json, "-" for stdout)`)
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "box list format: json, csv, toml, xlsx, dxf")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	engine.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	items, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Placing %d boxes...", len(items)))
	spinner.Start()
	s, _, hit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" && opts.Input == "-" {
		output = "-"
	}
	if output == "-" {
		return scene.Write(s, stdout)
	}
	if output == "" {
		output = basePath("", opts.Input) + ".scene.json"
	}
	if err := scene.WriteFile(s, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(s.Stats(), hit)
	printSkipped(s.Skipped)
	printNextStep("Render", "pinwheel render "+output)
	return nil
}

// printSkipped warns about boxes that found no free side.
func printSkipped(skipped []scene.SkippedBox) {
	for i, sk := range skipped {
		if i == maxSkippedShown {
			printDetail("... and %d more", len(skipped)-maxSkippedShown)
			return
		}
		name := sk.Label
		if name == "" {
			name = fmt.Sprintf("#%d", sk.Input)
		}
		printWarning("Skipped %s (%gx%g): no free side", name, sk.Width, sk.Height)
	}
}
