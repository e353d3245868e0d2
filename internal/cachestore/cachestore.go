// Package cachestore implements the bounded, key-indexed artifact cache
// shared by graphs and datasets (spec.md §4.5): at most one concurrent load
// per key, shared read-only artifacts across holders, and capacity-bounded
// eviction that only ever removes unpinned entries.
package cachestore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"h3routeserv/pkg/logger"
	"h3routeserv/pkg/metrics"
)

// Loader fetches the artifact for key on a cache miss.
type Loader[T any] func(ctx context.Context, key string) (T, error)

// Sizer reports the byte size an artifact counts against cache capacity
// (spec.md §3: "Cache total size (sum of artifact sizes) ≤ capacity at all
// times"). A nil Sizer makes every entry count as 1, degrading to a plain
// entry-count bound.
type Sizer[T any] func(value T) int64

type entry[T any] struct {
	value      T
	size       int64
	refCount   int
	accessedAt time.Time
}

// TypedCache is a generic bounded LRU keyed by string, instantiated once
// for graphs and once for datasets (two distinct TypedCache[T] values,
// never a single cache of an interface type — the kinds never mix).
type TypedCache[T any] struct {
	mu         sync.Mutex
	capacity   int64
	sizer      Sizer[T]
	kind       string
	entries    map[string]*entry[T]
	known      map[string]bool // keys discovered in the backing store but not yet loaded
	totalBytes int64
	group      singleflight.Group
}

// New builds a cache bounded by capacity bytes (<=0 means unbounded),
// tagged with kind for metrics ("graph" or "dataset"). sizer reports each
// artifact's byte size for the capacity accounting; a nil sizer makes every
// entry count as size 1.
func New[T any](capacity int64, kind string, sizer Sizer[T]) *TypedCache[T] {
	if sizer == nil {
		sizer = func(T) int64 { return 1 }
	}
	return &TypedCache[T]{
		capacity: capacity,
		sizer:    sizer,
		kind:     kind,
		entries:  make(map[string]*entry[T]),
		known:    make(map[string]bool),
	}
}

// SeedKnownKeys records keys discovered by listing the backing object store
// (spec.md §6 "cache index" support for ListGraphs/ListDatasets) without
// loading them.
func (c *TypedCache[T]) SeedKnownKeys(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.known[k] = true
	}
}

// ListKeys returns every key the cache knows about, loaded or not.
func (c *TypedCache[T]) ListKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.known)+len(c.entries))
	var out []string
	for k := range c.known {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for k := range c.entries {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Handle pins a loaded artifact for the handle's lifetime; Release unpins
// it, making it eligible for eviction again.
type Handle[T any] struct {
	cache *TypedCache[T]
	key   string
	value T
}

// Value returns the pinned artifact.
func (h *Handle[T]) Value() T { return h.value }

// Release unpins the artifact this handle holds.
func (h *Handle[T]) Release() {
	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()
	if e, ok := h.cache.entries[h.key]; ok && e.refCount > 0 {
		e.refCount--
	}
}

// Get resolves key, loading it via loader on a miss. Concurrent Get calls
// for the same key share a single in-flight load (singleflight). The
// returned Handle pins the artifact until Release is called.
func (c *TypedCache[T]) Get(ctx context.Context, key string, loader Loader[T]) (*Handle[T], error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.refCount++
		e.accessedAt = time.Now()
		c.mu.Unlock()
		metrics.Get().RecordCacheHit(c.kind)
		return &Handle[T]{cache: c, key: key, value: e.value}, nil
	}
	c.mu.Unlock()

	metrics.Get().RecordCacheMiss(c.kind)

	result, err, _ := c.group.Do(key, func() (any, error) {
		return loader(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	value := result.(T)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.refCount++
		existing.accessedAt = time.Now()
		return &Handle[T]{cache: c, key: key, value: existing.value}, nil
	}

	size := c.sizer(value)
	if c.capacity > 0 {
		c.evictUntilFitsLocked(size)
	}

	c.entries[key] = &entry[T]{value: value, size: size, refCount: 1, accessedAt: time.Now()}
	c.totalBytes += size
	delete(c.known, key)
	logger.Log.Debug("cachestore loaded artifact", "kind", c.kind, "key", key, "size_bytes", size)
	return &Handle[T]{cache: c, key: key, value: value}, nil
}

// evictUntilFitsLocked evicts least-recently-used unpinned entries until
// admitting an artifact of incomingSize bytes would not push the cache's
// total size over capacity, or no unpinned entries remain. Called with mu
// held. A cache saturated entirely with pinned entries grows past capacity
// rather than evict a live holder's artifact out from under it.
func (c *TypedCache[T]) evictUntilFitsLocked(incomingSize int64) {
	for c.totalBytes+incomingSize > c.capacity {
		var oldestKey string
		var oldestAccess time.Time

		for key, e := range c.entries {
			if e.refCount > 0 {
				continue
			}
			if oldestKey == "" || e.accessedAt.Before(oldestAccess) {
				oldestKey = key
				oldestAccess = e.accessedAt
			}
		}

		if oldestKey == "" {
			return
		}

		c.totalBytes -= c.entries[oldestKey].size
		delete(c.entries, oldestKey)
		logger.Log.Debug("cachestore evicted artifact", "kind", c.kind, "key", oldestKey)
	}
}

// Len reports the number of currently resident (loaded) entries.
func (c *TypedCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TotalBytes reports the sum of resident artifact sizes.
func (c *TypedCache[T]) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}
