package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/cachekey"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

var sf singleflight.Group

// Utility helpers
func cacheSetSilently(c ports.CacheStore, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.CacheStore, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingUserRepository decorates a UserRepository with cache-aside on FindByID,
// which is the author lookup on every article create. Cached entries never
// carry the password hash; credential checks go through GetByEmail, which is
// not cached.
type CachingUserRepository struct {
	inner     ports.UserRepository
	cache     ports.CacheStore
	ttl       time.Duration
	opTimeout time.Duration
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.CacheStore, ttl, opTimeout time.Duration) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl, opTimeout: opTimeout}
}

func (c *CachingUserRepository) cacheCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	// nothing to invalidate: absence is never cached
	return c.inner.Create(ctx, u)
}

func (c *CachingUserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	key := cachekey.Item(cachekey.KindUser, id)
	getCtx, cancel := c.cacheCtx(ctx)
	v, ok := cacheGet[user.User](c.cache, getCtx, key)
	cancel()
	if ok {
		return v, nil
	}

	// The shared load must not inherit one caller's cancellation; the inner
	// repository applies its own query timeout.
	ch := sf.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		u, err := c.inner.FindByID(lctx, id)
		if err != nil {
			return nil, err
		}
		setCtx, cancel := c.cacheCtx(lctx)
		defer cancel()
		cacheSetSilently(c.cache, setCtx, key, u, c.ttl)
		return u, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	u, ok := res.Val.(*user.User)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return u, nil
}

func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

var _ ports.UserRepository = (*CachingUserRepository)(nil)
