package ports

import (
	"context"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
)

// ArticleRepository is the authoritative article store.
type ArticleRepository interface {
	// Query returns one page of articles ordered by publication date, newest first,
	// together with the total number of matches.
	Query(ctx context.Context, q article.Query) ([]*article.Article, int, error)
	FindByID(ctx context.Context, id int64) (*article.Article, error)
	// Insert stores a and assigns its ID.
	Insert(ctx context.Context, a *article.Article) error
	UpdateByID(ctx context.Context, id int64, patch article.Patch) error
	DeleteByID(ctx context.Context, id int64) error
}

// ArticleService defines the article use cases exposed to transports.
type ArticleService interface {
	FindMany(ctx context.Context, q article.Query) (*article.List, error)
	FindOne(ctx context.Context, id int64) (*article.Article, error)
	Create(ctx context.Context, req *article.CreateArticleRequest, authorID int64) (*article.Article, error)
	Update(ctx context.Context, id int64, req *article.UpdateArticleRequest) (*article.Article, error)
	Remove(ctx context.Context, id int64) error
}

// CacheMetrics records cache outcomes. A nil CacheMetrics is valid for callers.
type CacheMetrics interface {
	Hit(resource string)
	Miss(resource string)
	Error(op string)
}
