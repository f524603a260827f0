package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/memcache"
)

type countingUsers struct {
	mu    sync.Mutex
	users map[int64]*user.User
	finds int
	// hook runs before each lookup; its error replaces the result
	hook func(ctx context.Context) error
}

func (c *countingUsers) FindByID(ctx context.Context, id int64) (*user.User, error) {
	c.mu.Lock()
	c.finds++
	hook := c.hook
	c.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	u, ok := c.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (c *countingUsers) Create(context.Context, *user.User) error { return nil }

func (c *countingUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range c.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func TestCachingUserRepository_FindByIDReadsThrough(t *testing.T) {
	inner := &countingUsers{users: map[int64]*user.User{
		1: {ID: 1, Email: "a@example.com", PasswordHash: "secret-hash"},
	}}
	cache := memcache.New(memcache.WithEvictInterval(0))
	t.Cleanup(func() { _ = cache.Close() })
	repo := NewCachingUserRepository(inner, cache, time.Minute, 100*time.Millisecond)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.finds)
	assert.Equal(t, first.Email, second.Email)
	assert.Empty(t, second.PasswordHash)

	b, ok, err := cache.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(b), "secret-hash")
}

func TestCachingUserRepository_MissingUserIsNotCached(t *testing.T) {
	inner := &countingUsers{users: map[int64]*user.User{}}
	cache := memcache.New(memcache.WithEvictInterval(0))
	t.Cleanup(func() { _ = cache.Close() })
	repo := NewCachingUserRepository(inner, cache, time.Minute, 100*time.Millisecond)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Equal(t, 2, inner.finds)
	assert.Equal(t, 0, cache.Len())
}

func TestCachingUserRepository_CancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	inner := &countingUsers{users: map[int64]*user.User{
		21: {ID: 21, Email: "shared@example.com"},
	}}
	inner.hook = func(ctx context.Context) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	cache := memcache.New(memcache.WithEvictInterval(0))
	t.Cleanup(func() { _ = cache.Close() })
	repo := NewCachingUserRepository(inner, cache, time.Minute, 100*time.Millisecond)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := repo.FindByID(ctxA, 21)
		errA <- err
	}()
	<-started

	type result struct {
		u   *user.User
		err error
	}
	resB := make(chan result, 1)
	go func() {
		u, err := repo.FindByID(context.Background(), 21)
		resB <- result{u, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	r := <-resB
	require.NoError(t, r.err)
	assert.Equal(t, "shared@example.com", r.u.Email)

	inner.mu.Lock()
	defer inner.mu.Unlock()
	assert.Equal(t, 1, inner.finds)
}
