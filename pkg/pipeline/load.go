package pipeline

import (
	"context"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
)

// Load reads the box list described by opts.
func Load(ctx context.Context, opts Options) ([]pio.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		items []pio.Item
		err   error
	)
	switch {
	case len(opts.Items) > 0:
		items = opts.Items
		err = validateItems(items)
	case opts.Input == "-":
		var f pio.Format
		if f, err = pio.ParseFormat(opts.InputFormat); err == nil {
			items, err = pio.Read(opts.Reader, f)
		}
	case opts.InputFormat != "":
		var f pio.Format
		if f, err = pio.ParseFormat(opts.InputFormat); err == nil {
			items, err = pio.ReadFileAs(opts.Input, f)
		}
	default:
		items, err = pio.ReadFile(opts.Input)
	}
	if err != nil {
		return nil, err
	}
	if len(items) > MaxBoxes {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "too many boxes: %d (max %d)", len(items), MaxBoxes)
	}
	return items, nil
}

func validateItems(items []pio.Item) error {
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return perrors.New(perrors.GetCode(err), "box %d: %s", i, perrors.UserMessage(err))
		}
	}
	return nil
}
