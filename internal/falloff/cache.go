package falloff

import (
	"sync"

	"github.com/Faultbox/tilegen/internal/grid"
)

type cacheKey struct {
	size   int
	shape  Shape
	params Params
}

// Cache memoizes masks by (size, shape, params). Cached masks are shared
// read-only; callers must not modify them.
type Cache struct {
	mu    sync.Mutex
	masks map[cacheKey]*grid.Field
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{masks: make(map[cacheKey]*grid.Field)}
}

// Get returns the cached mask, generating it on first use.
func (c *Cache) Get(size int, shape Shape, p Params) *grid.Field {
	key := cacheKey{size: size, shape: shape, params: p}

	c.mu.Lock()
	defer c.mu.Unlock()

	if mask, ok := c.masks[key]; ok {
		return mask
	}
	mask := Generate(size, shape, p)
	c.masks[key] = mask
	return mask
}

// Len returns the number of cached masks.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.masks)
}

var shared = NewCache()

// Shared returns the process-wide mask cache.
func Shared() *Cache {
	return shared
}
