package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/db"
	"github.com/sirupsen/logrus"
)

const articleSelect = `
		SELECT a.id, a.title, a.description, a.publication_date, a.author_id, u.email AS author_email
		FROM articles a
		JOIN users u ON u.id = a.author_id`

type articleRow struct {
	ID              int64     `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	PublicationDate time.Time `db:"publication_date"`
	AuthorID        int64     `db:"author_id"`
	AuthorEmail     string    `db:"author_email"`
}

func (r articleRow) toArticle() *article.Article {
	return &article.Article{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		PublicationDate: r.PublicationDate.UTC(),
		Author:          user.Author{ID: r.AuthorID, Email: r.AuthorEmail},
	}
}

// ArticleRepository implements ports.ArticleRepository on Postgres.
type ArticleRepository struct {
	db      *db.Database
	timeout time.Duration
	logger  *logrus.Logger
}

// NewArticleRepository creates a new article repository. Every call is bounded by timeout.
func NewArticleRepository(database *db.Database, timeout time.Duration, logger *logrus.Logger) ports.ArticleRepository {
	return &ArticleRepository{
		db:      database,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *ArticleRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *ArticleRepository) fail(op string, fields logrus.Fields, err error) error {
	if r.logger != nil {
		r.logger.WithFields(fields).WithError(err).Error("db: " + op + " failed")
	}
	return ports.NewStoreError(op, err)
}

// Query returns one page of articles, newest publication first.
func (r *ArticleRepository) Query(ctx context.Context, q article.Query) ([]*article.Article, int, error) {
	q = q.Normalize()
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if q.Author != nil {
		args = append(args, *q.Author)
		conds = append(conds, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if q.PublicationDate != "" {
		args = append(args, "%"+escapeLike(q.PublicationDate)+"%")
		conds = append(conds, fmt.Sprintf("CAST(a.publication_date AS TEXT) LIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM articles a` + where
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, r.fail("articles.count", logrus.Fields{"page": q.Page, "limit": q.Limit}, err)
	}

	pageArgs := append(append([]any{}, args...), q.Limit, q.Offset())
	listQuery := articleSelect + where + fmt.Sprintf(`
		ORDER BY a.publication_date DESC, a.id DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	var rows []articleRow
	if err := r.db.DB.SelectContext(ctx, &rows, listQuery, pageArgs...); err != nil {
		return nil, 0, r.fail("articles.query", logrus.Fields{"page": q.Page, "limit": q.Limit}, err)
	}

	items := make([]*article.Article, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toArticle())
	}
	return items, total, nil
}

// FindByID retrieves an article by ID
func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (*article.Article, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row articleRow
	err := r.db.DB.GetContext(ctx, &row, articleSelect+`
		WHERE a.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"article_id": id}).Debug("db: article not found by ID")
			}
			return nil, article.ErrNotFound
		}
		return nil, r.fail("articles.find", logrus.Fields{"article_id": id}, err)
	}
	return row.toArticle(), nil
}

// Insert creates a new article and assigns its ID
func (r *ArticleRepository) Insert(ctx context.Context, a *article.Article) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO articles (title, description, publication_date, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.DB.QueryRowxContext(ctx, query,
		a.Title, a.Description, a.PublicationDate, a.Author.ID).Scan(&a.ID)
	if err != nil {
		return r.fail("articles.insert", logrus.Fields{"author_id": a.Author.ID}, err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"article_id": a.ID, "author_id": a.Author.ID}).Debug("db: article created")
	}
	return nil
}

// UpdateByID applies patch to an existing article
func (r *ArticleRepository) UpdateByID(ctx context.Context, id int64, patch article.Patch) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if patch.Empty() {
		var exists bool
		if err := r.db.DB.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)`, id); err != nil {
			return r.fail("articles.update", logrus.Fields{"article_id": id}, err)
		}
		if !exists {
			return article.ErrNotFound
		}
		return nil
	}

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if patch.PublicationDate != nil {
		args = append(args, *patch.PublicationDate)
		sets = append(sets, fmt.Sprintf("publication_date = $%d", len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE articles SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return r.fail("articles.update", logrus.Fields{"article_id": id}, err)
	}
	return affectedOrNotFound(result, "articles.update", r)
}

// DeleteByID removes an article
func (r *ArticleRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return r.fail("articles.delete", logrus.Fields{"article_id": id}, err)
	}
	return affectedOrNotFound(result, "articles.delete", r)
}

func affectedOrNotFound(result sql.Result, op string, r *ArticleRepository) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.fail(op, nil, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rowsAffected == 0 {
		return article.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)
