// Package cache provides a small generation-keyed in-memory cache for
// derived results computed over an immutable dataset snapshot.
//
// Every entry is tagged with the generation of the snapshot it was computed
// from. Readers pass the current generation on lookup; an entry stored under
// any other generation is a miss, so a rebuilt snapshot invalidates the whole
// cache implicitly without coordination. The cache is safe for concurrent
// use.
package cache

import "sync"

// DefaultMaxEntries bounds the cache when the caller passes a non-positive
// capacity to New.
const DefaultMaxEntries = 1024

// Cache maps string keys to values of type V, scoped to a snapshot
// generation.
type Cache[V any] struct {
	mu      sync.RWMutex
	gen     uint64
	entries map[string]V
	max     int
}

// New returns an empty cache holding at most max entries per generation.
func New[V any](max int) *Cache[V] {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache[V]{
		entries: make(map[string]V),
		max:     max,
	}
}

// Get returns the value stored under key for the given generation.
// A key stored under a different generation is a miss.
func (c *Cache[V]) Get(gen uint64, key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero V
	if gen != c.gen {
		return zero, false
	}
	v, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	return v, true
}

// Put stores a value under key for the given generation. Storing under a
// newer generation discards all entries of the previous one; a value tagged
// with an older generation than the cache currently holds is dropped.
// When the cache is full, the entry set is reset rather than evicted
// piecemeal; the entries are cheap to recompute from the snapshot.
func (c *Cache[V]) Put(gen uint64, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case gen > c.gen:
		c.gen = gen
		c.entries = make(map[string]V)
	case gen < c.gen:
		return
	}
	if len(c.entries) >= c.max {
		c.entries = make(map[string]V)
	}
	c.entries[key] = v
}

// Len reports the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
