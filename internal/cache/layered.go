package cache

import "time"

// LayeredCache fronts a persistent disk store with a bounded memory
// working set. Reads check memory first and promote disk hits; writes
// go through both layers. The split fits revision JSON: the disk layer
// keeps every revision across runs, while the memory TTL stops a long
// fetch run from holding all of them resident.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache builds the two layers. memoryTTL bounds the working
// set; diskTTL is normally NoExpiration.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory, then disk. A disk hit is promoted so repeat
// lookups in the same run stay off the filesystem.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val)
		return val, true
	}

	return nil, false
}

// Set writes through both layers
func (c *LayeredCache) Set(key string, value []byte) error {
	if err := c.memory.Set(key, value); err != nil {
		return err
	}
	return c.disk.Set(key, value)
}
