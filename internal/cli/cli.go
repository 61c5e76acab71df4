package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/internal/config"
	"github.com/matzehuels/pinwheel/pkg/buildinfo"
	"github.com/matzehuels/pinwheel/pkg/cache"
	"github.com/matzehuels/pinwheel/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pinwheel"

	// cachePrefix namespaces pinwheel keys in a shared Redis.
	cachePrefix = "pinwheel:cache:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
	out        io.Writer
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pinwheel packs rectangles around a spiral",
		Long: `Pinwheel places rectangles one at a time around a growing cluster, each new
box attached to a free side of an earlier one, so that the boxes wind outward
in a spiral. Layouts are deterministic: the same boxes always give the same picture.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/pinwheel/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. "config init" runs before a file exists
// and skips validation of a broken one.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, cachePrefix)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pinwheel/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// engineFlags binds the placement flags shared by layout, place and animate.
// Defaults come from the config at run time, so flags only override values
// the user set explicitly.
type engineFlags struct {
	hint              string
	tilt              float64
	aspectRatio       float64
	noRound           bool
	stopOnUnplaceable bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hint, "hint", pipeline.DefaultHint, "initial direction: right, bottom, left, top")
	cmd.Flags().Float64Var(&f.tilt, "tilt", 0.5, "offset along the attached side, 0 to 1")
	cmd.Flags().Float64Var(&f.aspectRatio, "aspect-ratio", 0, "target width/height ratio (0 keeps the strict rotation)")
	cmd.Flags().BoolVar(&f.noRound, "no-round", false, "keep fractional offsets")
	cmd.Flags().BoolVar(&f.stopOnUnplaceable, "strict", false, "fail on the first unplaceable box instead of skipping it")
}

// apply copies explicitly set flags over opts.
func (f *engineFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("hint") {
		opts.Hint = f.hint
	}
	if cmd.Flags().Changed("tilt") {
		t := f.tilt
		opts.Tilt = &t
	}
	if cmd.Flags().Changed("aspect-ratio") {
		opts.AspectRatio = f.aspectRatio
	}
	if cmd.Flags().Changed("no-round") {
		opts.NoRound = f.noRound
	}
	if cmd.Flags().Changed("strict") {
		opts.StopOnUnplaceable = f.stopOnUnplaceable
	}
}

// renderFlags binds the output flags shared by render and place.
type renderFlags struct {
	formats  string
	noLabels bool
	margin   float64
	scale    float64
	detailed bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg, png, pdf, json, xlsx, dxf, tree (comma-separated)")
	cmd.Flags().BoolVar(&f.noLabels, "no-labels", false, "omit box labels")
	cmd.Flags().Float64Var(&f.margin, "margin", pipeline.DefaultMargin, "padding around the scene")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "output units per scene unit (png)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show positions and sizes in the tree diagram")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	if cmd.Flags().Changed("no-labels") {
		opts.NoLabels = f.noLabels
	}
	if cmd.Flags().Changed("margin") {
		m := f.margin
		opts.Margin = &m
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	opts.Detailed = f.detailed
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the output path prefix. Without an explicit output the
// input's extension is stripped; a known format extension on output is too.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".scene")
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidateFormat(ext) == nil {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
