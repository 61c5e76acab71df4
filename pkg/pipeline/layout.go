package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/observability"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ctxCheckInterval is how many placements run between context checks.
const ctxCheckInterval = 256

// GenerateLayout places items in order and returns the resulting scene.
//
// Boxes the engine cannot place are recorded in Scene.Skipped, unless
// opts.StopOnUnplaceable is set, in which case the first one aborts the run
// with an UNPLACEABLE error.
func GenerateLayout(ctx context.Context, items []pio.Item, opts Options) (scene.Scene, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return scene.Scene{}, err
	}

	engineOpts := opts.EngineOptions()
	packer := spiral.NewPacker(spiral.New(spiral.WithOptions(engineOpts)), opts.HintDirection())
	hooks := observability.Placement()

	labels := make([]string, 0, len(items))
	var skipped []scene.SkippedBox

	for i, it := range items {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return scene.Scene{}, err
			}
		}

		start := time.Now()
		p, err := packer.Place(it.Size())
		if errors.Is(err, spiral.ErrUnplaceable) {
			hooks.OnUnplaceable(ctx, it.Width, it.Height)
			if opts.StopOnUnplaceable {
				return scene.Scene{}, perrors.Wrap(perrors.ErrCodeUnplaceable, err, "box %d (%gx%g)", i, it.Width, it.Height)
			}
			opts.Logger.Debug("skipped box", "input", i, "width", it.Width, "height", it.Height)
			skipped = append(skipped, scene.SkippedBox{Input: i, Label: it.Label, Width: it.Width, Height: it.Height})
			continue
		}
		if err != nil {
			return scene.Scene{}, fmt.Errorf("box %d: %w", i, err)
		}
		hooks.OnPlace(ctx, p.Index, p.Direction.String(), time.Since(start))
		labels = append(labels, it.Label)
	}

	s := scene.FromState(packer.State(), labels, engineOpts)
	s.Skipped = skipped
	return s, nil
}
