// Command pinwheel-view opens a desktop window that places boxes one per tick
// and one more on every click.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/internal/config"
	"github.com/matzehuels/pinwheel/internal/viewer"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/source"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		interval   time.Duration
		seed       uint64
		limit      int
		hint       string
		save       string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "pinwheel-view [boxes|generator.js]",
		Short:         "Watch the spiral grow in a desktop window",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "pinwheel-view"})
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			if cmd.Flags().Changed("hint") {
				opts.Hint = hint
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			src, err := source.Open(path, seed, source.WithLimit(limit))
			if err != nil {
				return err
			}
			player := source.NewPlayer(src, opts.EngineOptions(), opts.HintDirection())

			v := viewer.New(app.NewWithID("io.pinwheel.view"), player, interval, logger)
			if save != "" {
				v.OnSave = func(s scene.Scene) error {
					logger.Info("saving scene", "path", save, "blocks", len(s.Blocks))
					return scene.WriteFile(s, save)
				}
			}
			return v.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", viewer.DefaultInterval, "time between placements")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for random demo boxes")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many random boxes (0 = unlimited)")
	cmd.Flags().StringVar(&hint, "hint", "", "direction of the first placement (left, right, top, bottom)")
	cmd.Flags().StringVar(&save, "save", "", "write the final scene to this file on exit")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pinwheel/config.toml)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every placement")
	return cmd
}
