package cachekey_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/article-cache-api/internal/core/cachekey"
	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
)

func TestItemKey(t *testing.T) {
	assert.Equal(t, "article:1", cachekey.Item(cachekey.KindArticle, 1))
	assert.Equal(t, "user:42", cachekey.Item(cachekey.KindUser, 42))
	assert.True(t, strings.HasPrefix(cachekey.Item(cachekey.KindArticle, 7), cachekey.ItemPrefix(cachekey.KindArticle)))
}

func TestCollectionKey_IndependentOfParameterOrder(t *testing.T) {
	a, err := url.ParseQuery("page=2&limit=5&author=3&publicationDate=2024")
	require.NoError(t, err)
	b, err := url.ParseQuery("publicationDate=2024&author=3&limit=5&page=2")
	require.NoError(t, err)

	ka := cachekey.Collection(cachekey.KindArticle, article.QueryFromValues(a))
	kb := cachekey.Collection(cachekey.KindArticle, article.QueryFromValues(b))

	assert.Equal(t, ka, kb)
	assert.Equal(t, "articles:author=3&limit=5&page=2&publicationDate=2024", ka)
}

func TestCollectionKey_DefaultsShareOneKey(t *testing.T) {
	empty := cachekey.Collection(cachekey.KindArticle, article.Query{})
	explicit := cachekey.Collection(cachekey.KindArticle, article.Query{Page: 1, Limit: 10})
	fromValues := cachekey.Collection(cachekey.KindArticle, article.QueryFromValues(url.Values{}))

	assert.Equal(t, "articles:limit=10&page=1", empty)
	assert.Equal(t, empty, explicit)
	assert.Equal(t, empty, fromValues)
}

func TestCollectionKey_DistinguishesQueries(t *testing.T) {
	one := int64(1)
	two := int64(2)
	keys := map[string]struct{}{}
	for _, q := range []article.Query{
		{},
		{Page: 2},
		{Limit: 20},
		{Author: &one},
		{Author: &two},
		{PublicationDate: "2024-01"},
	} {
		keys[cachekey.Collection(cachekey.KindArticle, q)] = struct{}{}
	}
	assert.Len(t, keys, 6)
}

func TestCollectionKey_EscapesValues(t *testing.T) {
	k := cachekey.Collection(cachekey.KindArticle, article.Query{PublicationDate: "a&page=9"})
	assert.Equal(t, "articles:limit=10&page=1&publicationDate=a%26page%3D9", k)
}

func TestPrefixesDoNotOverlap(t *testing.T) {
	item := cachekey.Item(cachekey.KindArticle, 1)
	coll := cachekey.Collection(cachekey.KindArticle, article.Query{})

	assert.False(t, strings.HasPrefix(item, cachekey.CollectionPrefix(cachekey.KindArticle)))
	assert.False(t, strings.HasPrefix(coll, cachekey.ItemPrefix(cachekey.KindArticle)))
}

func TestCollectionKey_ZeroAuthorMatchesUnfiltered(t *testing.T) {
	zero := int64(0)
	assert.Equal(t,
		cachekey.Collection(cachekey.KindArticle, article.Query{}),
		cachekey.Collection(cachekey.KindArticle, article.Query{Author: &zero}))
}
