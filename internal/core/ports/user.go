package ports

import (
	"context"

	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
)

// AuthorResolver resolves the author referenced by a new article.
type AuthorResolver interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	AuthorResolver
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
