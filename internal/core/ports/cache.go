package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable wraps every transport or timeout failure of a CacheStore.
// Callers recover from it locally: a read treats it as a miss and an
// invalidation logs it and moves on.
var ErrCacheUnavailable = errors.New("cache unavailable")

// CacheStore is the key-value contract the cache-aside layer runs on.
// Implementations must be safe for concurrent use and must never return an
// entry whose TTL has elapsed.
type CacheStore interface {
	// Get returns the payload for key. ok=false if absent or expired.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Set stores payload under key for ttl, overwriting any previous value.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Delete removes keys; absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// ScanPrefix lists keys starting with prefix. Only used for invalidation.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
