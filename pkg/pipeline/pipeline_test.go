package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pinwheel/pkg/cache"
	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"xlsx", false},
		{"dxf", false},
		{"tree", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	err := ValidateFormats([]string{"svg", "invalid"})
	if !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "boxes.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Hint != DefaultHint {
		t.Errorf("Hint = %q, want %q", opts.Hint, DefaultHint)
	}
	if *opts.Tilt != spiral.DefaultTilt {
		t.Errorf("Tilt = %v, want %v", *opts.Tilt, spiral.DefaultTilt)
	}
	if *opts.Margin != DefaultMargin {
		t.Errorf("Margin = %v, want %v", *opts.Margin, DefaultMargin)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if !opts.EngineOptions().Round {
		t.Error("rounding should be on by default")
	}
}

func TestOptionsValidate(t *testing.T) {
	tilt := 1.5
	margin := -1.0
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"no input", Options{}, perrors.ErrCodeInvalidInput},
		{"stdin without reader", Options{Input: "-", InputFormat: "csv"}, perrors.ErrCodeInvalidInput},
		{"stdin without format", Options{Input: "-", Reader: strings.NewReader("")}, perrors.ErrCodeInvalidInput},
		{"bad input format", Options{Input: "x", InputFormat: "yaml"}, perrors.ErrCodeInvalidFormat},
		{"bad hint", Options{Input: "x.csv", Hint: "sideways"}, perrors.ErrCodeInvalidDirection},
		{"bad tilt", Options{Input: "x.csv", Tilt: &tilt}, perrors.ErrCodeInvalidInput},
		{"bad aspect", Options{Input: "x.csv", AspectRatio: -1}, perrors.ErrCodeInvalidInput},
		{"bad margin", Options{Input: "x.csv", Margin: &margin}, perrors.ErrCodeInvalidInput},
		{"bad format", Options{Input: "x.csv", Formats: []string{"gif"}}, perrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := perrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{Input: "x.csv"}
	b := Options{Input: "x.csv", Hint: "b"}
	_ = a.ValidateAndSetDefaults()
	_ = b.ValidateAndSetDefaults()

	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("different hints should produce different layout keys")
	}
	if got := b.LayoutKeyOpts().Hint; got != "bottom" {
		t.Errorf("Hint = %q, want bottom", got)
	}
	if !a.LayoutKeyOpts().SkipUnplaceable {
		t.Error("skipping unplaceable boxes should be the default")
	}
}

func TestLoadReader(t *testing.T) {
	opts := Options{
		Input:       "-",
		InputFormat: "csv",
		Reader:      strings.NewReader("label,width,height\na,10,10\nb,5,5\n"),
	}
	items, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []pio.Item{{Label: "a", Width: 10, Height: 10}, {Label: "b", Width: 5, Height: 5}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadItemsValidated(t *testing.T) {
	_, err := Load(context.Background(), Options{Items: []pio.Item{{Width: 1, Height: 1}, {Width: 0, Height: 1}}})
	if !perrors.Is(err, perrors.ErrCodeInvalidBox) {
		t.Fatalf("Load() error = %v, want INVALID_BOX", err)
	}
	if !strings.Contains(err.Error(), "box 1") {
		t.Errorf("error %q should name box 1", err)
	}
}

func TestGenerateLayout(t *testing.T) {
	items := []pio.Item{
		{Label: "base", Width: 10, Height: 10},
		{Width: 5, Height: 5},
		{Width: 5, Height: 5},
	}
	opts := Options{Items: items}
	s, err := GenerateLayout(context.Background(), items, opts)
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}

	if len(s.Blocks) != 3 {
		t.Fatalf("Blocks = %d, want 3", len(s.Blocks))
	}
	want := []scene.Block{
		{Index: 0, Label: "base", X: 0, Y: 0, Width: 10, Height: 10, Parent: -1, Direction: spiral.Right},
		{Index: 1, X: 10, Y: 0, Width: 5, Height: 5, Parent: 0, Direction: spiral.Right},
		{Index: 2, X: 5, Y: 10, Width: 5, Height: 5, Parent: 0, Direction: spiral.Bottom},
	}
	if diff := cmp.Diff(want, s.Blocks); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
	if s.Hint != spiral.Bottom {
		t.Errorf("Hint = %v, want bottom", s.Hint)
	}
	if len(s.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", s.Skipped)
	}
}

func TestGenerateLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := []pio.Item{{Width: 1, Height: 1}}
	if _, err := GenerateLayout(ctx, items, Options{Items: items}); err != context.Canceled {
		t.Errorf("GenerateLayout() error = %v, want context.Canceled", err)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Items:   []pio.Item{{Width: 40, Height: 30}, {Width: 20, Height: 20}, {Width: 10, Height: 50}},
		Formats: []string{FormatSVG, FormatJSON, FormatXLSX},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want no hits", first.CacheInfo)
	}
	if first.Stats.Boxes != 3 || first.Stats.Placed != 3 {
		t.Errorf("Stats = %+v, want 3 boxes placed", first.Stats)
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if first.BoxesHash != second.BoxesHash {
		t.Error("box hash changed between runs")
	}
	if diff := cmp.Diff(first.Scene, second.Scene); diff != "" {
		t.Errorf("cached scene differs (-first +second):\n%s", diff)
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run CacheInfo = %+v, want no hits", third.CacheInfo)
	}
}

func TestRunnerScopedSeparatesArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	items := []pio.Item{{Width: 40, Height: 30}, {Width: 20, Height: 20}}
	s, err := GenerateLayout(context.Background(), items, Options{Items: items})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{FormatSVG}}

	render := func(r *Runner) bool {
		t.Helper()
		_, hit, err := r.RenderWithCacheInfo(context.Background(), s, opts)
		if err != nil {
			t.Fatal(err)
		}
		return hit
	}

	a, b := runner.Scoped("a:"), runner.Scoped("b:")
	if render(a) {
		t.Error("first render in scope a hit the cache")
	}
	if render(b) {
		t.Error("scope b hit an artifact rendered in scope a")
	}
	if render(runner) {
		t.Error("unscoped runner hit a scoped artifact")
	}
	if !render(runner.Scoped("a:")) {
		t.Error("second render in scope a missed the cache")
	}
	if a.Cache != runner.Cache || a.Logger != runner.Logger {
		t.Error("scoped runner does not share cache and logger")
	}
}

func TestRenderAllFormats(t *testing.T) {
	items := []pio.Item{{Width: 40, Height: 30}, {Width: 20, Height: 20}}
	s, err := GenerateLayout(context.Background(), items, Options{Items: items})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Render(context.Background(), s, Options{Formats: Formats})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for _, f := range Formats {
		if len(out[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.Contains(string(out[FormatDXF]), "LWPOLYLINE") {
		t.Error("dxf artifact has no polylines")
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ContentType(f) == "application/octet-stream" {
			t.Errorf("ContentType(%q) not mapped", f)
		}
	}
	if got := Extension(FormatTree); got != "tree.svg" {
		t.Errorf("Extension(tree) = %q, want tree.svg", got)
	}
}
