package cache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so tests can substitute a fake clock
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value V
	at    time.Time
}

// TTL is a process-wide, read-mostly cache with per-entry expiry.
// Staleness up to the TTL is accepted; concurrent refreshes race with
// last-write-wins semantics and no coordination.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	clock   Clock
	maxSize int

	hits   int
	misses int
}

// NewTTL creates a cache with the given TTL. maxSize <= 0 means
// unbounded; past the bound the cache is cleared wholesale, matching
// the memoization behavior the normalizer needs.
func NewTTL[V any](ttl time.Duration, maxSize int, clock Clock) *TTL[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
		maxSize: maxSize,
	}
}

// Get returns the cached value and whether it was present and fresh
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && (c.ttl <= 0 || c.clock.Now().Sub(e.at) < c.ttl) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, true
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	var zero V
	return zero, false
}

// Age returns how long ago the entry was stored, if it exists at all
// (even expired). Used for near-expiry refresh decisions.
func (c *TTL[V]) Age(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return c.clock.Now().Sub(e.at), true
}

// Set stores a value, timestamped now
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.entries = make(map[string]entry[V])
	}
	c.entries[key] = entry[V]{value: value, at: c.clock.Now()}
}

// GetOrLoad returns the cached value or invokes load and stores the
// result. Load errors are returned without caching anything.
func (c *TTL[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Stats returns hit/miss counters
func (c *TTL[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of stored entries, fresh or not
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
