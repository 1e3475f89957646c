// Package cache provides byte-oriented caching for rendered artifacts.
//
// Rendering a map graph to SVG or DOT is deterministic for a given graph,
// so artifacts are cached under a key derived from the graph's content
// hash plus the render options. Backends:
//   - memory: in-process cache for servers and tests
//   - file: persistent cache for CLI usage
//   - null: caching disabled
//
// Keys are produced by a Keyer so callers never concatenate key strings
// by hand; ScopedKeyer adds a prefix for per-document isolation.
package cache

import (
	"context"
	"time"
)

// TTLs for cached artifacts.
const (
	// TTLRender is how long rendered artifacts stay valid. Renders are
	// deterministic per graph hash, so this is generous.
	TTLRender = 7 * 24 * time.Hour
)

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RenderKeyOpts are the render options that shape an artifact, and
// therefore its cache key.
type RenderKeyOpts struct {
	Format  string `json:"format"`
	Rankdir string `json:"rankdir"`
	Labels  bool   `json:"labels"`
	Orphans bool   `json:"orphans"`
	URLs    bool   `json:"urls"`
}

// Keyer generates cache keys.
type Keyer interface {
	// RenderKey generates a key for a rendered artifact of the graph
	// with the given content hash.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}
