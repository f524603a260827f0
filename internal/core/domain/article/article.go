package article

import (
	"errors"
	"strings"
	"time"

	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
)

var (
	// ErrNotFound is returned when the requested article does not exist.
	ErrNotFound = errors.New("article not found")
	// ErrAuthorNotFound is returned by create when the referenced author does not exist.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrInvalidPublicationDate is returned when a publication date cannot be parsed.
	ErrInvalidPublicationDate = errors.New("invalid publication date")
)

// Article is a published piece of content. Author is fixed at creation.
type Article struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	PublicationDate time.Time   `json:"publicationDate"`
	Author          user.Author `json:"author"`
}

// List is one page of a collection query together with the total match count.
type List struct {
	Data  []*Article `json:"data"`
	Count int        `json:"count"`
}

// CreateArticleRequest represents the request to create an article
type CreateArticleRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	PublicationDate string `json:"publicationDate" validate:"required"`
}

// UpdateArticleRequest represents a partial update. The author is not updatable.
type UpdateArticleRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description     *string `json:"description,omitempty"`
	PublicationDate *string `json:"publicationDate,omitempty"`
}

// Patch is the validated set of column changes handed to the repository.
type Patch struct {
	Title           *string
	Description     *string
	PublicationDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.PublicationDate == nil
}

// ToPatch parses the request into a Patch.
func (r *UpdateArticleRequest) ToPatch() (Patch, error) {
	p := Patch{Title: r.Title, Description: r.Description}
	if r.PublicationDate != nil {
		t, err := ParsePublicationDate(*r.PublicationDate)
		if err != nil {
			return Patch{}, err
		}
		p.PublicationDate = &t
	}
	return p, nil
}

var publicationDateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParsePublicationDate accepts an ISO-8601 date or date-time.
func ParsePublicationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range publicationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidPublicationDate
}
