package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dop251/goja"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
)

// Script yields items produced by a JavaScript generator. The script must
// define a function next(i) that is called with the zero-based item number
// and returns one of:
//
//	[width, height]
//	[width, height, "label"]
//	{width: w, height: h, label: "optional"}
//	null or undefined to stop
//
// Example:
//
//	function next(i) {
//	  if (i >= 20) return null;
//	  return [10 + (i * 7) % 40, 10 + (i * 13) % 30];
//	}
type Script struct {
	vm   *goja.Runtime
	next goja.Callable
	i    int
	done bool
}

// NewScript compiles src. name is used in error messages.
func NewScript(name, src string) (*Script, error) {
	vm := goja.New()
	if _, err := vm.RunScript(name, src); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "run %s", name)
	}
	fn, ok := goja.AssertFunction(vm.Get("next"))
	if !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "%s does not define a function next(i)", name)
	}
	return &Script{vm: vm, next: fn}, nil
}

// NewScriptFile loads a generator script from path.
func NewScriptFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "script %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewScript(path, string(src))
}

// Next implements Source. Cancelling ctx interrupts a running script.
func (s *Script) Next(ctx context.Context) (pio.Item, error) {
	if s.done {
		return pio.Item{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return pio.Item{}, err
	}

	stop := context.AfterFunc(ctx, func() { s.vm.Interrupt(ctx.Err()) })
	res, err := s.next(goja.Undefined(), s.vm.ToValue(s.i))
	stop()
	s.vm.ClearInterrupt()
	if err != nil {
		if ctx.Err() != nil {
			return pio.Item{}, ctx.Err()
		}
		return pio.Item{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "next(%d)", s.i)
	}
	if res == nil || goja.IsNull(res) || goja.IsUndefined(res) {
		s.done = true
		return pio.Item{}, io.EOF
	}

	it, err := itemFromJS(res.Export())
	if err != nil {
		return pio.Item{}, perrors.New(perrors.ErrCodeInvalidBox, "next(%d): %v", s.i, err)
	}
	if err := it.Validate(); err != nil {
		return pio.Item{}, perrors.New(perrors.GetCode(err), "next(%d): %s", s.i, perrors.UserMessage(err))
	}
	s.i++
	return it, nil
}

func itemFromJS(v any) (pio.Item, error) {
	switch x := v.(type) {
	case []any:
		if len(x) < 2 || len(x) > 3 {
			return pio.Item{}, fmt.Errorf("expected [width, height] or [width, height, label], got %d elements", len(x))
		}
		w, ok1 := number(x[0])
		h, ok2 := number(x[1])
		if !ok1 || !ok2 {
			return pio.Item{}, fmt.Errorf("width and height must be numbers")
		}
		it := pio.Item{Width: w, Height: h}
		if len(x) == 3 {
			it.Label = fmt.Sprint(x[2])
		}
		return it, nil
	case map[string]any:
		w, ok1 := number(x["width"])
		h, ok2 := number(x["height"])
		if !ok1 || !ok2 {
			return pio.Item{}, fmt.Errorf("object must have numeric width and height")
		}
		it := pio.Item{Width: w, Height: h}
		if l, ok := x["label"]; ok && l != nil {
			it.Label = fmt.Sprint(l)
		}
		return it, nil
	}
	return pio.Item{}, fmt.Errorf("unsupported return value %T", v)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
