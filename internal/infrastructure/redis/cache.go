package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// scanCount is the COUNT hint passed to SCAN per round trip.
const scanCount = 200

// RedisCache implements ports.CacheStore on a Redis client it owns.
type RedisCache struct {
	r redis.UniversalClient
	// optional key prefix to namespace entries
	prefix string
}

// NewRedisCache creates a new Redis-backed cache. Close closes r.
func NewRedisCache(r redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{r: r, prefix: prefix}
}

func (c *RedisCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *RedisCache) strip(key string) string {
	if c.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, c.prefix+":")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %w", op, ports.ErrCacheUnavailable, err)
}

// Get implements CacheStore.Get.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", err)
	}
	return val, true, nil
}

// Set implements CacheStore.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.r.Set(ctx, c.namespaced(key), value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Delete implements CacheStore.Delete.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ns := make([]string, len(keys))
	for i, k := range keys {
		ns[i] = c.namespaced(k)
	}
	if err := c.r.Del(ctx, ns...).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

// ScanPrefix implements CacheStore.ScanPrefix with cursor-based SCAN, so the
// server is never blocked the way KEYS would block it.
func (c *RedisCache) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(c.namespaced(prefix)) + "*"
	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.r.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, unavailable("scan", err)
		}
		for _, k := range batch {
			// SCAN may return a key more than once
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, c.strip(k))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Ping implements CacheStore.Ping.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.r.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close implements CacheStore.Close.
func (c *RedisCache) Close() error {
	return c.r.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ ports.CacheStore = (*RedisCache)(nil)
