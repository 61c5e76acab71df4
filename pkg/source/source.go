// Package source provides box sources: the callers that decide which box the
// engine places next.
//
// A [Source] yields items one at a time and reports exhaustion with io.EOF.
// Sources are consumed by the animator, the desktop viewer and the pipeline;
// none of them is safe for concurrent use.
package source

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	pio "github.com/matzehuels/pinwheel/pkg/io"
)

// Source yields boxes to place.
type Source interface {
	// Next returns the next item, or io.EOF when the source is exhausted.
	Next(ctx context.Context) (pio.Item, error)
}

// Drain reads every remaining item from src.
func Drain(ctx context.Context, src Source) ([]pio.Item, error) {
	var out []pio.Item
	for {
		it, err := src.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, it)
	}
}

// =============================================================================
// Slice
// =============================================================================

// Slice yields a fixed list of items in order.
type Slice struct {
	items []pio.Item
	pos   int
}

// NewSlice returns a source over items.
func NewSlice(items []pio.Item) *Slice {
	return &Slice{items: items}
}

// Next implements Source.
func (s *Slice) Next(ctx context.Context) (pio.Item, error) {
	if err := ctx.Err(); err != nil {
		return pio.Item{}, err
	}
	if s.pos >= len(s.items) {
		return pio.Item{}, io.EOF
	}
	it := s.items[s.pos]
	s.pos++
	return it, nil
}

// Remaining returns the number of items not yet returned.
func (s *Slice) Remaining() int { return len(s.items) - s.pos }

// =============================================================================
// Random
// =============================================================================

// DemoSizes are the box sizes the random source picks from.
var DemoSizes = []pio.Item{
	{Width: 100, Height: 100},
	{Width: 150, Height: 80},
	{Width: 120, Height: 90},
	{Width: 80, Height: 130},
	{Width: 110, Height: 110},
	{Width: 50, Height: 50},
	{Width: 75, Height: 35},
	{Width: 20, Height: 20},
	{Width: 200, Height: 20},
	{Width: 20, Height: 200},
}

// Random picks items uniformly from a palette of sizes with a seeded
// generator, so a seed always reproduces the same sequence.
type Random struct {
	rng     *rand.Rand
	sizes   []pio.Item
	limit   int
	emitted int
}

// RandomOption configures a Random source.
type RandomOption func(*Random)

// WithLimit stops the source after n items. Zero means unlimited.
func WithLimit(n int) RandomOption { return func(r *Random) { r.limit = n } }

// WithSizes replaces the size palette.
func WithSizes(sizes []pio.Item) RandomOption { return func(r *Random) { r.sizes = sizes } }

// NewRandom returns a random source seeded with seed.
func NewRandom(seed uint64, opts ...RandomOption) *Random {
	r := &Random{rng: rand.New(rand.NewPCG(seed, seed>>1|1)), sizes: DemoSizes}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next implements Source. Items are labelled with their sequence number.
func (r *Random) Next(ctx context.Context) (pio.Item, error) {
	if err := ctx.Err(); err != nil {
		return pio.Item{}, err
	}
	if (r.limit > 0 && r.emitted >= r.limit) || len(r.sizes) == 0 {
		return pio.Item{}, io.EOF
	}
	it := r.sizes[r.rng.IntN(len(r.sizes))]
	if it.Label == "" {
		it.Label = fmt.Sprintf("box %d", r.emitted+1)
	}
	r.emitted++
	return it, nil
}
