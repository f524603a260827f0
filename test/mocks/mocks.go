package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
)

// ArticleRepositoryMock is a lightweight mock for ArticleRepository
type ArticleRepositoryMock struct {
	QueryFn      func(ctx context.Context, q article.Query) ([]*article.Article, int, error)
	FindByIDFn   func(ctx context.Context, id int64) (*article.Article, error)
	InsertFn     func(ctx context.Context, a *article.Article) error
	UpdateByIDFn func(ctx context.Context, id int64, patch article.Patch) error
	DeleteByIDFn func(ctx context.Context, id int64) error
}

func (m *ArticleRepositoryMock) Query(ctx context.Context, q article.Query) ([]*article.Article, int, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, q)
	}
	return []*article.Article{}, 0, nil
}
func (m *ArticleRepositoryMock) FindByID(ctx context.Context, id int64) (*article.Article, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, article.ErrNotFound
}
func (m *ArticleRepositoryMock) Insert(ctx context.Context, a *article.Article) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, a)
	}
	return nil
}
func (m *ArticleRepositoryMock) UpdateByID(ctx context.Context, id int64, patch article.Patch) error {
	if m.UpdateByIDFn != nil {
		return m.UpdateByIDFn(ctx, id, patch)
	}
	return nil
}
func (m *ArticleRepositoryMock) DeleteByID(ctx context.Context, id int64) error {
	if m.DeleteByIDFn != nil {
		return m.DeleteByIDFn(ctx, id)
	}
	return nil
}

// UserRepositoryMock is a lightweight mock for UserRepository; it also
// satisfies AuthorResolver.
type UserRepositoryMock struct {
	CreateFn     func(ctx context.Context, u *user.User) error
	FindByIDFn   func(ctx context.Context, id int64) (*user.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*user.User, error)
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) FindByID(ctx context.Context, id int64) (*user.User, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}

// CacheStoreMock is a lightweight mock for CacheStore. Unset operations
// behave like an empty, healthy cache.
type CacheStoreMock struct {
	GetFn        func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn        func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn     func(ctx context.Context, keys ...string) error
	ScanPrefixFn func(ctx context.Context, prefix string) ([]string, error)
	PingFn       func(ctx context.Context) error
	CloseFn      func() error
}

func (m *CacheStoreMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *CacheStoreMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *CacheStoreMock) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, keys...)
	}
	return nil
}
func (m *CacheStoreMock) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	if m.ScanPrefixFn != nil {
		return m.ScanPrefixFn(ctx, prefix)
	}
	return nil, nil
}
func (m *CacheStoreMock) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}
func (m *CacheStoreMock) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// FailingCache returns a CacheStoreMock whose every operation fails with
// ErrCacheUnavailable.
func FailingCache() *CacheStoreMock {
	err := fmt.Errorf("mock: %w", ports.ErrCacheUnavailable)
	return &CacheStoreMock{
		GetFn:        func(context.Context, string) ([]byte, bool, error) { return nil, false, err },
		SetFn:        func(context.Context, string, []byte, time.Duration) error { return err },
		DeleteFn:     func(context.Context, ...string) error { return err },
		ScanPrefixFn: func(context.Context, string) ([]string, error) { return nil, err },
		PingFn:       func(context.Context) error { return err },
	}
}

// ArticleServiceMock is a lightweight mock for ArticleService
type ArticleServiceMock struct {
	FindManyFn func(ctx context.Context, q article.Query) (*article.List, error)
	FindOneFn  func(ctx context.Context, id int64) (*article.Article, error)
	CreateFn   func(ctx context.Context, req *article.CreateArticleRequest, authorID int64) (*article.Article, error)
	UpdateFn   func(ctx context.Context, id int64, req *article.UpdateArticleRequest) (*article.Article, error)
	RemoveFn   func(ctx context.Context, id int64) error
}

func (m *ArticleServiceMock) FindMany(ctx context.Context, q article.Query) (*article.List, error) {
	if m.FindManyFn != nil {
		return m.FindManyFn(ctx, q)
	}
	return &article.List{Data: []*article.Article{}}, nil
}
func (m *ArticleServiceMock) FindOne(ctx context.Context, id int64) (*article.Article, error) {
	if m.FindOneFn != nil {
		return m.FindOneFn(ctx, id)
	}
	return nil, article.ErrNotFound
}
func (m *ArticleServiceMock) Create(ctx context.Context, req *article.CreateArticleRequest, authorID int64) (*article.Article, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req, authorID)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *ArticleServiceMock) Update(ctx context.Context, id int64, req *article.UpdateArticleRequest) (*article.Article, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, req)
	}
	return nil, article.ErrNotFound
}
func (m *ArticleServiceMock) Remove(ctx context.Context, id int64) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, id)
	}
	return nil
}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	RegisterFn      func(ctx context.Context, req *auth.RegisterRequest) (*auth.AuthTokens, error)
	LoginFn         func(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

func (m *AuthServiceMock) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.AuthTokens, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req)
	}
	return &auth.AuthTokens{AccessToken: "access"}, nil
}
func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return nil, auth.ErrInvalidCredentials
}
func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}

// HealthCheckerMock is a lightweight mock for HealthChecker
type HealthCheckerMock struct {
	NameValue     string
	CriticalValue bool
	CheckFn       func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string   { return m.NameValue }
func (m *HealthCheckerMock) Critical() bool { return m.CriticalValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

var (
	_ ports.ArticleRepository = (*ArticleRepositoryMock)(nil)
	_ ports.UserRepository    = (*UserRepositoryMock)(nil)
	_ ports.CacheStore        = (*CacheStoreMock)(nil)
	_ ports.ArticleService    = (*ArticleServiceMock)(nil)
	_ ports.AuthService       = (*AuthServiceMock)(nil)
	_ ports.HealthChecker     = (*HealthCheckerMock)(nil)
)
