// Package memcache is an in-process ports.CacheStore. It backs the service
// when CACHE_DRIVER=memory and stands in for Redis in tests.
package memcache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/ports"
)

const defaultEvictInterval = 30 * time.Second

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is a mutex-guarded map with per-entry expiry.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	now      func() time.Time
	interval time.Duration
	closed   bool
	stop     chan struct{}
}

type Option func(*Cache)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithEvictInterval sets how often expired entries are swept. Zero disables sweeping.
func WithEvictInterval(d time.Duration) Option {
	return func(c *Cache) { c.interval = d }
}

// New creates a cache and starts its eviction loop.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]entry),
		now:      time.Now,
		interval: defaultEvictInterval,
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.interval > 0 {
		go c.evictLoop()
	}
	return c
}

var errClosed = fmt.Errorf("memcache: %w: closed", ports.ErrCacheUnavailable)

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, errClosed
	}
	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		return nil, false, nil
	}
	// Return a copy to prevent mutation
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, true, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	c.entries[key] = entry{value: cp, expiresAt: expiresAt}
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *Cache) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, errClosed
	}
	now := c.now()
	var keys []string
	for k, e := range c.entries {
		if strings.HasPrefix(k, prefix) && !e.expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Ping(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errClosed
	}
	return nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.entries = nil
	close(c.stop)
	return nil
}

// Sweep drops expired entries.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

var _ ports.CacheStore = (*Cache)(nil)
