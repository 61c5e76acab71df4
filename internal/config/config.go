// Package config loads the pinwheel configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/pinwheel/config.toml
// (~/.config/pinwheel/config.toml when XDG_CONFIG_HOME is unset). Every
// section is optional; missing keys keep their defaults:
//
//	[engine]
//	hint = "right"
//	tilt = 0.5
//
//	[render]
//	formats = ["svg", "png"]
//	margin = 10
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	session_store = "file"
//	session_ttl = "24h"
//
// Command-line flags override values from the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
	"github.com/matzehuels/pinwheel/pkg/pipeline"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

const (
	appName  = "pinwheel"
	fileName = "config.toml"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Session stores.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config is the full configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// EngineConfig holds placement defaults.
type EngineConfig struct {
	Hint              string  `toml:"hint"`
	Tilt              float64 `toml:"tilt"`
	AspectRatio       float64 `toml:"aspect_ratio"`
	Round             bool    `toml:"round"`
	StopOnUnplaceable bool    `toml:"stop_on_unplaceable"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Margin  float64  `toml:"margin"`
	Scale   float64  `toml:"scale"`
	Labels  bool     `toml:"labels"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir,omitempty"` // file backend; empty means the XDG cache dir
	RedisURL string `toml:"redis_url,omitempty"`
}

// ServerConfig configures `pinwheel serve`.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	SessionStore  string   `toml:"session_store"`
	SessionDir    string   `toml:"session_dir,omitempty"`
	SessionTTL    Duration `toml:"session_ttl"`
	RedisURL      string   `toml:"redis_url,omitempty"`
	MongoURI      string   `toml:"mongo_uri,omitempty"`
	MongoDatabase string   `toml:"mongo_database,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Hint:  pipeline.DefaultHint,
			Tilt:  spiral.DefaultTilt,
			Round: true,
		},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Margin:  pipeline.DefaultMargin,
			Scale:   pipeline.DefaultScale,
			Labels:  true,
		},
		Cache: CacheConfig{Backend: CacheFile},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			SessionStore:  StoreMemory,
			SessionTTL:    Duration{24 * time.Hour},
			MongoDatabase: appName,
		},
	}
}

// SetDefaults fills empty fields with their defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Engine.Hint == "" {
		c.Engine.Hint = d.Engine.Hint
	}
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = d.Render.Formats
	}
	if c.Render.Scale == 0 {
		c.Render.Scale = d.Render.Scale
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.SessionStore == "" {
		c.Server.SessionStore = d.Server.SessionStore
	}
	if c.Server.SessionTTL.Duration == 0 {
		c.Server.SessionTTL = d.Server.SessionTTL
	}
	if c.Server.MongoDatabase == "" {
		c.Server.MongoDatabase = d.Server.MongoDatabase
	}
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	if _, err := spiral.ParseDirection(c.Engine.Hint); err != nil {
		return fmt.Errorf("engine.hint: %w", err)
	}
	if c.Engine.Tilt < 0 || c.Engine.Tilt > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "engine.tilt must be between 0 and 1, got %g", c.Engine.Tilt)
	}
	if c.Engine.AspectRatio < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "engine.aspect_ratio must not be negative")
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return fmt.Errorf("render.formats: %w", err)
	}
	if c.Render.Margin < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "render.margin must not be negative")
	}
	if c.Render.Scale <= 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "render.scale must be positive")
	}

	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return perrors.New(perrors.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
	}

	switch c.Server.SessionStore {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Server.RedisURL == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "server.redis_url is required for the redis session store")
		}
	case StoreMongo:
		if c.Server.MongoURI == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "server.mongo_uri is required for the mongo session store")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "server.session_store must be one of memory, file, redis, mongo; got %q", c.Server.SessionStore)
	}
	if c.Server.SessionTTL.Duration < time.Minute {
		return perrors.New(perrors.ErrCodeInvalidInput, "server.session_ttl must be at least 1m")
	}
	return nil
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the configuration at path on top of the defaults. An empty path
// means the default location; a missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "config %s: unknown key %s", path, undecoded[0])
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Encode returns the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the configuration to path, creating parent directories. It
// refuses to overwrite an existing file unless force is set.
func (c *Config) Write(path string, force bool) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "config %s already exists", path)
	}
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

// PipelineOptions returns pipeline options seeded from the configuration.
func (c *Config) PipelineOptions() pipeline.Options {
	tilt := c.Engine.Tilt
	margin := c.Render.Margin
	return pipeline.Options{
		Hint:              c.Engine.Hint,
		Tilt:              &tilt,
		AspectRatio:       c.Engine.AspectRatio,
		NoRound:           !c.Engine.Round,
		StopOnUnplaceable: c.Engine.StopOnUnplaceable,
		Formats:           slices.Clone(c.Render.Formats),
		NoLabels:          !c.Render.Labels,
		Margin:            &margin,
		Scale:             c.Render.Scale,
	}
}
