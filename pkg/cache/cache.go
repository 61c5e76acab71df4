// Package cache provides the byte-level cache used by the pipeline to skip
// recomputing layouts and rendered artifacts.
//
// Three backends are available: [NullCache] disables caching, [FileCache]
// stores entries under a local directory for CLI use, and [RedisCache] shares
// entries between server instances. Keys are produced by a [Keyer] so callers
// never build them by hand.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. The boolean reports whether the key was
	// present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl stores the value without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey returns the key of a computed layout for a box list.
	LayoutKey(boxesHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of a rendered artifact for a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the engine settings that change a layout.
type LayoutKeyOpts struct {
	Hint            string  `json:"hint"`
	Tilt            float64 `json:"tilt"`
	AspectRatio     float64 `json:"aspect_ratio"`
	Round           bool    `json:"round"`
	SkipUnplaceable bool    `json:"skip_unplaceable"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels"`
	Margin float64 `json:"margin"`
	Scale  float64 `json:"scale"`
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(boxesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", boxesHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
