package article

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query selects one page of articles. Zero Page and Limit mean "use the default".
type Query struct {
	Page  int
	Limit int
	// Author restricts results to one author id when set.
	Author *int64
	// PublicationDate is matched as a substring of the stored publication timestamp.
	PublicationDate string
}

// Normalize returns q with defaults applied and limits bounded. A
// non-positive author id means no author filter.
func (q Query) Normalize() Query {
	if q.Author != nil && *q.Author <= 0 {
		q.Author = nil
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// Offset is the number of rows skipped for the normalized page.
func (q Query) Offset() int {
	n := q.Normalize()
	return (n.Page - 1) * n.Limit
}

// QueryFromValues reads page, limit, author and publicationDate from
// request parameters. Malformed numbers fall back to defaults.
func QueryFromValues(v url.Values) Query {
	var q Query
	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = p
	}
	if l, err := strconv.Atoi(v.Get("limit")); err == nil {
		q.Limit = l
	}
	if a, err := strconv.ParseInt(v.Get("author"), 10, 64); err == nil && a > 0 {
		q.Author = &a
	}
	q.PublicationDate = strings.TrimSpace(v.Get("publicationDate"))
	return q.Normalize()
}
