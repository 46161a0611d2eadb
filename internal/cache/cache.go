package cache

import (
	"sync"
	"time"
)

// TTLCache holds a single value with a fixed expiry window. The clock is
// injected so expiry is deterministic under test. A stale read racing a
// refresh may trigger two refetches; both store the same listing, so the
// race is benign.
type TTLCache[T any] struct {
	mu      sync.RWMutex
	value   T
	setAt   time.Time
	present bool
	ttl     time.Duration
	now     func() time.Time
}

// New creates a TTLCache with the given expiry window and clock.
// A nil clock falls back to time.Now.
func New[T any](ttl time.Duration, now func() time.Time) *TTLCache[T] {
	if now == nil {
		now = time.Now
	}
	return &TTLCache[T]{ttl: ttl, now: now}
}

// Get returns the cached value if it is present and not expired.
func (c *TTLCache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	if !c.present {
		return zero, false
	}
	if c.now().Sub(c.setAt) > c.ttl {
		return zero, false
	}
	return c.value, true
}

// Set stores a value and restarts the expiry window.
func (c *TTLCache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.setAt = c.now()
	c.present = true
}

// Invalidate drops the cached value immediately.
func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.present = false
}
