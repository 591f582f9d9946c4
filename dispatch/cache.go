// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type (
	// cache memoizes values per key. Concurrent lookups of the same key wait for
	// a single computation, while lookups of distinct keys proceed in parallel.
	cache[V any] struct {
		mu    sync.RWMutex
		data  map[string]*slot[V]
		stats *CacheStats
	}
	slot[V any] struct {
		mu     sync.Mutex
		value  V
		loaded bool
	}

	// CacheStats counts the accesses to a cache.
	CacheStats struct {
		total atomic.Uint64
		hits  atomic.Uint64
	}
)

func newCache[V any](stats *CacheStats) *cache[V] {
	return &cache[V]{
		data:  make(map[string]*slot[V]),
		stats: stats,
	}
}

// load retrieves the value for key, computing it with compute if it is not
// already present. The slot is only marked as loaded once compute returns, so a
// panicking compute leaves it empty for the next lookup to retry.
func (c *cache[V]) load(key string, compute func() V) V {
	c.stats.total.Add(1)

	s := c.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		c.stats.hits.Add(1)
		return s.value
	}

	s.value = compute()
	s.loaded = true
	return s.value
}

// len returns the number of keys in the cache.
func (c *cache[V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *cache[V]) slot(key string) *slot[V] {
	c.mu.RLock()
	s, ok := c.data[key]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Check again, since we non-atomically upgraded to a write lock
	if s, ok := c.data[key]; ok {
		return s
	}
	s = &slot[V]{}
	c.data[key] = s
	return s
}

// Hits returns the count of cache accesses that resulted in a hit.
func (c *CacheStats) Hits() uint64 {
	return c.hits.Load()
}

// Count returns the total count of cache accesses.
func (c *CacheStats) Count() uint64 {
	return c.total.Load()
}

func (c *CacheStats) String() string {
	total := c.total.Load()
	hits := c.hits.Load()
	if total == 0 {
		return "Cache hits: 0 of 0"
	}

	return fmt.Sprintf("Cache hits: %d of %d (%.2f%%)",
		hits,
		total,
		100.0*float64(hits)/float64(total),
	)
}
