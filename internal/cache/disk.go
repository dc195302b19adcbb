package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists entries as plain files, one per key, holding
// exactly the bytes that were stored. A cached Wikidata revision on
// disk is the JSON the API served and can be inspected with any tool.
// Freshness is judged from file modification time against the
// configured TTL; NoExpiration disables the check entirely.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

// Get returns the stored bytes when present and fresh. Stale files are
// removed on sight.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	if c.ttl != NoExpiration {
		info, err := os.Stat(path)
		if err != nil {
			return nil, false
		}
		if time.Since(info.ModTime()) > c.ttl {
			_ = os.Remove(path)
			return nil, false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set writes the value to its file, creating the cache directory on
// first use.
func (c *DiskCache) Set(key string, value []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(c.path(key), value, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// path maps a key to its file
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
