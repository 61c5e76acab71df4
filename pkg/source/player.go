package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/observability"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

// Player places boxes from a Source one at a time. It backs the terminal
// animation and the desktop viewer, which both advance it on a timer and on
// user input; Player is safe for concurrent use.
type Player struct {
	mu      sync.Mutex
	src     Source
	packer  *spiral.Packer
	opts    spiral.Options
	labels  []string
	skipped []scene.SkippedBox
	inputs  int
	done    bool
}

// Step reports the outcome of one Player.Step call. Exactly one of Block,
// Skipped or Done is set.
type Step struct {
	Block   *scene.Block
	Skipped *scene.SkippedBox
	Done    bool
}

// NewPlayer returns a player drawing from src.
func NewPlayer(src Source, opts spiral.Options, hint spiral.Direction) *Player {
	return &Player{
		src:    src,
		packer: spiral.NewPacker(spiral.New(spiral.WithOptions(opts)), hint),
		opts:   opts,
	}
}

// Step pulls the next item from the source and places it. Boxes with no free
// side are skipped and reported; an exhausted source yields Done.
func (p *Player) Step(ctx context.Context) (Step, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return Step{Done: true}, nil
	}
	it, err := p.src.Next(ctx)
	if errors.Is(err, io.EOF) {
		p.done = true
		return Step{Done: true}, nil
	}
	if err != nil {
		return Step{}, err
	}
	if err := it.Validate(); err != nil {
		return Step{}, perrors.New(perrors.GetCode(err), "box %d: %s", p.inputs, perrors.UserMessage(err))
	}

	input := p.inputs
	p.inputs++
	start := time.Now()
	pl, err := p.packer.Place(it.Size())
	if errors.Is(err, spiral.ErrUnplaceable) {
		observability.Placement().OnUnplaceable(ctx, it.Width, it.Height)
		sk := scene.SkippedBox{Input: input, Label: it.Label, Width: it.Width, Height: it.Height}
		p.skipped = append(p.skipped, sk)
		return Step{Skipped: &sk}, nil
	}
	if err != nil {
		return Step{}, fmt.Errorf("place box %d: %w", input, err)
	}
	observability.Placement().OnPlace(ctx, pl.Index, pl.Direction.String(), time.Since(start))

	p.labels = append(p.labels, it.Label)
	return Step{Block: &scene.Block{
		Index:     pl.Index,
		Label:     it.Label,
		X:         pl.Box.Position.X,
		Y:         pl.Box.Position.Y,
		Width:     pl.Box.Size.X,
		Height:    pl.Box.Size.Y,
		Parent:    pl.Parent,
		Direction: pl.Direction,
	}}, nil
}

// Done reports whether the source is exhausted.
func (p *Player) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Inputs returns the number of items pulled so far.
func (p *Player) Inputs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputs
}

// Hint returns the direction the next placement tries first.
func (p *Player) Hint() spiral.Direction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.packer.Hint()
}

// Scene returns a snapshot of everything placed so far.
func (p *Player) Scene() scene.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := scene.FromState(p.packer.State(), p.labels, p.opts)
	s.Skipped = append([]scene.SkippedBox(nil), p.skipped...)
	return s
}

// PlayItems is a convenience for a Player over a fixed list.
func PlayItems(items []pio.Item, opts spiral.Options, hint spiral.Direction) *Player {
	return NewPlayer(NewSlice(items), opts, hint)
}
