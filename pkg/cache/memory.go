package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. It serves a single server
// process that should not touch the disk; entries are lost on exit.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns a copy of the stored value. Expired entries are dropped.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return slices.Clone(e.data), true, nil
}

// Set stores a copy of data. A zero ttl keeps the entry until Close.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: slices.Clone(data)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// NullCache stores nothing; every Get misses. It backs --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = NullCache{}
)
