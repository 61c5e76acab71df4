package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/source"
)

// animateCommand creates the animate command: a live spiral in the terminal.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		interval time.Duration
		seed     uint64
		limit    int
		save     string
		engine   engineFlags
	)

	cmd := &cobra.Command{
		Use:   "animate [boxes|generator.js]",
		Short: "Watch boxes being placed one per tick",
		Long: `Watch boxes being placed one per tick in the terminal.

Without an argument, boxes are drawn at random from a fixed set of demo sizes
(seeded with --seed, so runs repeat). A box list file is played in order. A
.js file must define next(i) returning [width, height], {width, height, label}
or null to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			src, err := source.Open(path, seed, source.WithLimit(limit))
			if err != nil {
				return err
			}

			opts := c.Config.PipelineOptions()
			engine.apply(cmd, &opts)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			player := source.NewPlayer(src, opts.EngineOptions(), opts.HintDirection())
			return c.runAnimate(cmd.Context(), player, interval, save)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 200*time.Millisecond, "time between placements")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for random demo boxes")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many random boxes (0 = unlimited)")
	cmd.Flags().StringVar(&save, "save", "", "write the final scene to this file on exit")
	engine.register(cmd)

	return cmd
}

func (c *CLI) runAnimate(ctx context.Context, player *source.Player, interval time.Duration, save string) error {
	model := NewAnimateModel(ctx, player, interval)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run animation: %w", err)
	}
	m, ok := final.(AnimateModel)
	if !ok {
		m = model
	}

	s := m.Scene()
	if save != "" {
		if err := scene.WriteFile(s, save); err != nil {
			return fmt.Errorf("save scene: %w", err)
		}
		printFile(save)
	}
	printStats(s.Stats(), false)
	return m.Err()
}
