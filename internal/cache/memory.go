package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps a TTL-bounded working set in process memory. The
// TTL caps resident size over a long fetch run; go-cache sweeps
// expired entries on the cleanup interval.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for ttl.
// NoExpiration pins everything until the process exits.
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value under the cache's TTL policy
func (c *MemoryCache) Set(key string, value []byte) error {
	c.cache.SetDefault(key, value)
	return nil
}
