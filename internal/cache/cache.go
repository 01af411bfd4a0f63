// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides the TTL key/value cache shared by the retrieval
// layer. Two instances back the retriever: one for query embeddings (long
// TTL) and one for full result sets (short TTL).
package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache. Expired entries are treated as
// misses and evicted on read; Cleanup sweeps the rest opportunistically.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	ttl     time.Duration
	hits    int
	misses  int

	// now is swapped by tests to control expiry.
	now func() time.Time
}

// New returns a cache whose entries expire ttl after Set.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key. An entry past its expiry counts as
// a miss and is evicted in place.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero T
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		var zero T
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Cleanup removes every expired entry and returns how many were evicted.
func (c *Cache[T]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops all entries and resets the hit/miss counters.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[T])
	c.hits = 0
	c.misses = 0
}

// Stats summarizes cache effectiveness.
type Stats struct {
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:   c.hits,
		Misses: c.misses,
		Size:   len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// GenerateKey builds a cache key from a raw query and its filter map. The
// filter keys are sorted before serializing so that logically identical
// queries hit the same entry regardless of map iteration order.
func GenerateKey(rawQuery string, filters map[string]string) string {
	if len(filters) == 0 {
		return rawQuery
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(rawQuery)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, filters[k])
	}
	return b.String()
}
