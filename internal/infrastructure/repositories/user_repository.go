package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/db"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// unique_violation
const pqUniqueViolation = "23505"

// UserRepository implements the user repository interface
type UserRepository struct {
	db      *db.Database
	timeout time.Duration
	logger  *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.Database, timeout time.Duration, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{
		db:      database,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *UserRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create creates a new user and fills in its ID and creation time
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.DB.QueryRowxContext(ctx, query, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return user.ErrEmailTaken
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": u.Email}).WithError(err).Error("db: failed to create user")
		}
		return ports.NewStoreError("users.create", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("db: user created")
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *UserRepository) getOne(ctx context.Context, column string, value any) (*user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u user.User
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE %s = $1`, column)

	err := r.db.DB.GetContext(ctx, &u, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{column: value}).Debug("db: user not found by " + column)
			}
			return nil, user.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{column: value}).WithError(err).Error("db: failed to get user by " + column)
		}
		return nil, ports.NewStoreError("users.get_by_"+column, err)
	}

	return &u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
