// Package cache provides a bounded, time-aware embedding cache.
//
// The cache maps a normalised query string to a previously computed
// vector. Entries are evicted least-recently-used at capacity and expire
// after a time-to-live since insertion or a time-to-idle since last
// access, whichever comes sooner. Each cache is an explicitly constructed
// instance with its own lifecycle; there is no process-wide singleton.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/semdex/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultMaxCapacity     = 512
	DefaultTimeToLive      = 30 * time.Minute
	DefaultTimeToIdle      = 10 * time.Minute
	DefaultCleanupInterval = time.Minute
)

// Config holds cache configuration.
type Config struct {
	// MaxCapacity bounds the number of entries; the cache never grows past
	// it (default 512).
	MaxCapacity int

	// TimeToLive expires an entry this long after insertion (default 30m).
	TimeToLive time.Duration

	// TimeToIdle expires an entry this long after its last access
	// (default 10m).
	TimeToIdle time.Duration

	// CleanupInterval is how often expired entries are swept (default 1m).
	CleanupInterval time.Duration
}

// entry is a cached vector with its expiry bookkeeping.
type entry struct {
	key            string
	vector         []float32
	insertedAt     time.Time
	lastAccessedAt time.Time
}

// Cache is a thread-safe LRU cache with TTL and TTI expiry.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	tti      time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	group    singleflight.Group
	now      func() time.Time

	shutdown chan struct{}
	done     chan struct{}
}

// New creates a cache and starts its background sweep goroutine.
// Zero config fields take the package defaults.
func New(cfg Config) *Cache {
	if cfg.MaxCapacity <= 0 {
		cfg.MaxCapacity = DefaultMaxCapacity
	}
	if cfg.TimeToLive <= 0 {
		cfg.TimeToLive = DefaultTimeToLive
	}
	if cfg.TimeToIdle <= 0 {
		cfg.TimeToIdle = DefaultTimeToIdle
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	c := &Cache{
		capacity: cfg.MaxCapacity,
		ttl:      cfg.TimeToLive,
		tti:      cfg.TimeToIdle,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	go c.sweep(cfg.CleanupInterval)

	return c
}

// NormalizeKey canonicalises a query string: trimmed, lowercased, internal
// whitespace runs collapsed to single spaces. Queries differing only in
// case or whitespace share one entry.
func NormalizeKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// expired reports whether e is past its TTL or TTI at time now.
func (c *Cache) expired(e *entry, now time.Time) bool {
	if now.Sub(e.insertedAt) >= c.ttl {
		return true
	}
	return now.Sub(e.lastAccessedAt) >= c.tti
}

// Get returns the cached vector for key, if present and unexpired.
// A hit refreshes the entry's idle clock and LRU position.
func (c *Cache) Get(key string) ([]float32, bool) {
	key = NormalizeKey(key)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return nil, false
	}

	e := element.Value.(*entry)
	if c.expired(e, now) {
		c.remove(element)
		return nil, false
	}

	e.lastAccessedAt = now
	c.order.MoveToFront(element)
	return e.vector, true
}

// Put stores a vector under key, evicting the least recently used entry
// when at capacity.
func (c *Cache) Put(key string, vector []float32) {
	key = NormalizeKey(key)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		e := element.Value.(*entry)
		e.vector = vector
		e.insertedAt = now
		e.lastAccessedAt = now
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&entry{
		key:            key,
		vector:         vector,
		insertedAt:     now,
		lastAccessedAt: now,
	})
	c.items[key] = element

	if len(c.items) > c.capacity {
		if back := c.order.Back(); back != nil {
			c.remove(back)
		}
	}
}

// GetOrCompute returns the cached vector for key or computes it on miss.
// Concurrent callers for one key share a single in-flight computation and
// all receive its result. Compute errors propagate and are not cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute driven.ComputeFunc) ([]float32, error) {
	norm := NormalizeKey(key)

	if vector, ok := c.Get(norm); ok {
		return vector, nil
	}

	result, err, _ := c.group.Do(norm, func() (any, error) {
		// Re-check under the flight: another caller may have populated the
		// entry between the miss and the flight start.
		if vector, ok := c.Get(norm); ok {
			return vector, nil
		}

		vector, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(norm, vector)
		return vector, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]float32), nil
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Stats returns the live entry count and the approximate memory weight of
// the cached vectors.
func (c *Cache) Stats() driven.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bytes int64
	for _, element := range c.items {
		e := element.Value.(*entry)
		bytes += int64(len(e.vector)) * 4
		bytes += int64(len(e.key))
	}

	return driven.CacheStats{
		Entries:     len(c.items),
		ApproxBytes: bytes,
	}
}

// Close stops the background sweep goroutine.
func (c *Cache) Close() error {
	select {
	case <-c.shutdown:
	default:
		close(c.shutdown)
	}

	select {
	case <-c.done:
		return nil
	case <-time.After(5 * time.Second):
		return context.DeadlineExceeded
	}
}

// remove drops an element from both the map and the LRU list.
// Caller must hold the mutex.
func (c *Cache) remove(element *list.Element) {
	e := element.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(element)
}

// sweep periodically removes expired entries.
func (c *Cache) sweep(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.shutdown:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// removeExpired walks the LRU list and drops every expired entry.
func (c *Cache) removeExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for element := c.order.Front(); element != nil; {
		next := element.Next()
		if c.expired(element.Value.(*entry), now) {
			c.remove(element)
		}
		element = next
	}
}
