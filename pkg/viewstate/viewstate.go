// Package viewstate caches the per-map view transform (zoom and pan) so
// returning to a map restores how the user last saw it.
//
// An absent entry means no view exists yet and "fit to container" must be
// computed. That computation waits for the image's natural size, so its
// result can arrive after the user has navigated away or loaded a new
// document. Cache generations guard against that: capture [Cache.Generation]
// when starting the computation and commit with [Cache.SetIfCurrent], which
// drops results from a generation that has since passed.
package viewstate

import (
	"sync"

	"github.com/matzehuels/atlas/pkg/geometry"
)

// Cache holds the last view transform per map id. Safe for concurrent use;
// asynchronous fit computations commit from their own goroutines.
type Cache struct {
	mu         sync.RWMutex
	transforms map[string]geometry.Transform
	generation uint64
}

// New returns an empty cache at generation zero.
func New() *Cache {
	return &Cache{transforms: make(map[string]geometry.Transform)}
}

// Get returns the cached transform for a map. ok=false means no view has
// been stored and the caller should compute a fit.
func (c *Cache) Get(mapID string) (geometry.Transform, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.transforms[mapID]
	return t, ok
}

// Set stores the transform for a map. Invalid transforms (non-positive or
// non-finite scale) are not stored, so an absent entry keeps meaning "fit
// to container".
func (c *Cache) Set(mapID string, t geometry.Transform) {
	if !t.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transforms[mapID] = t
}

// Forget drops the entry for one map, typically because the map was
// deleted.
func (c *Cache) Forget(mapID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.transforms, mapID)
}

// Reset clears every entry and advances the generation. Called when the
// document is replaced wholesale.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transforms = make(map[string]geometry.Transform)
	c.generation++
}

// Bump advances the generation without clearing entries. Called on every
// navigation so fit results computed for the previous map cannot land on
// the new one.
func (c *Cache) Bump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}

// Generation returns the current generation tag. Capture it before kicking
// off an asynchronous fit computation.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfCurrent stores the transform only when gen still matches the cache
// generation, reporting whether it was applied. A stale generation means
// the user navigated or replaced the document while the computation ran;
// the late result is discarded.
func (c *Cache) SetIfCurrent(gen uint64, mapID string, t geometry.Transform) bool {
	if !t.Valid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.transforms[mapID] = t
	return true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.transforms)
}
