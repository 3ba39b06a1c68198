// Package contentcache deduplicates file reads across search strategies.
// Several search units walking the same workspace would otherwise read the
// same files once each; the cache reads once and hands out the bytes.
package contentcache

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type entry struct {
	once    sync.Once
	content []byte
	hash    uint64
	err     error
}

// Cache is a shared, concurrency-safe file-content cache. A given path is
// read from disk at most once per Cache lifetime, including under
// concurrent access from parallel search units.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get returns the content of path, reading it on first access. Concurrent
// callers for the same path share a single read. The returned slice is
// shared; callers must not mutate it.
func (c *Cache) Get(path string) ([]byte, error) {
	e := c.entryFor(path)
	e.once.Do(func() {
		e.content, e.err = os.ReadFile(path)
		if e.err != nil {
			e.err = fmt.Errorf("read %s: %w", path, e.err)
			return
		}
		e.hash = xxhash.Sum64(e.content)
	})
	return e.content, e.err
}

// Hash returns the xxhash of path's content, reading the file on first
// access. Used for change detection against a stored snapshot.
func (c *Cache) Hash(path string) (uint64, error) {
	if _, err := c.Get(path); err != nil {
		return 0, err
	}
	return c.entryFor(path).hash, nil
}

// Len returns the number of paths the cache has been asked about.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) entryFor(path string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		e = &entry{}
		c.entries[path] = e
	}
	return e
}
