package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/pinwheel/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Fatalf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[engine]
hint = "top"
tilt = 0.25

[render]
formats = ["png", "pdf"]
labels = false

[server]
session_store = "file"
session_ttl = "90m"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Engine.Hint = "top"
	want.Engine.Tilt = 0.25
	want.Render.Formats = []string{"png", "pdf"}
	want.Render.Labels = false
	want.Server.SessionStore = StoreFile
	want.Server.SessionTTL = Duration{90 * time.Minute}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	opts := cfg.PipelineOptions()
	if opts.Hint != "top" || *opts.Tilt != 0.25 || !opts.NoLabels || *opts.Margin != 10 {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[engine]\nspin = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Fatalf("Load() error = %v, want INVALID_INPUT", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   perrors.Code
	}{
		{"bad hint", func(c *Config) { c.Engine.Hint = "sideways" }, perrors.ErrCodeInvalidDirection},
		{"tilt above one", func(c *Config) { c.Engine.Tilt = 1.5 }, perrors.ErrCodeInvalidInput},
		{"bad format", func(c *Config) { c.Render.Formats = []string{"bmp"} }, perrors.ErrCodeInvalidFormat},
		{"negative margin", func(c *Config) { c.Render.Margin = -1 }, perrors.ErrCodeInvalidInput},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, perrors.ErrCodeInvalidInput},
		{"redis cache without url", func(c *Config) { c.Cache.Backend = CacheRedis }, perrors.ErrCodeInvalidInput},
		{"mongo store without uri", func(c *Config) { c.Server.SessionStore = StoreMongo }, perrors.ErrCodeInvalidInput},
		{"short ttl", func(c *Config) { c.Server.SessionTTL = Duration{time.Second} }, perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if got := perrors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Cache.Backend = CacheNone
	if err := cfg.Write(path, false); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Write(path, false); err == nil {
		t.Fatal("second Write without force should fail")
	}
	if err := cfg.Write(path, true); err != nil {
		t.Fatalf("Write(force) = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "pinwheel", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
