// Package cachekey builds the cache keys shared by every cache backend.
//
// Keys are a compatibility surface: single items are stored under
// "{kind}:{id}" and collection queries under "{kind}s:{canonical query}".
// The canonical query lists fields in sorted name order with defaults
// applied, so logically equal queries always share one key.
package cachekey

import (
	"net/url"
	"strconv"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
)

// Resource kinds.
const (
	KindArticle = "article"
	KindUser    = "user"
)

// Item returns the key of a single resource.
func Item(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

// ItemPrefix returns the namespace of single-resource keys.
func ItemPrefix(kind string) string {
	return kind + ":"
}

// CollectionPrefix returns the namespace every collection key of kind starts with.
func CollectionPrefix(kind string) string {
	return kind + "s:"
}

// Collection returns the key of a collection query.
func Collection(kind string, q article.Query) string {
	return CollectionPrefix(kind) + Canonical(q)
}

// Canonical serializes q deterministically. url.Values.Encode sorts by field name.
func Canonical(q article.Query) string {
	n := q.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(n.Page))
	v.Set("limit", strconv.Itoa(n.Limit))
	if n.Author != nil {
		v.Set("author", strconv.FormatInt(*n.Author, 10))
	}
	if n.PublicationDate != "" {
		v.Set("publicationDate", n.PublicationDate)
	}
	return v.Encode()
}
