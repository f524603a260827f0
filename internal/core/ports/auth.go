package ports

import (
	"context"

	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
)

// AuthService issues and validates access tokens.
type AuthService interface {
	Register(ctx context.Context, req *auth.RegisterRequest) (*auth.AuthTokens, error)
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}
