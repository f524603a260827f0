package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver"
	"github.com/avatarctic/article-cache-api/test/mocks"
)

const validToken = "valid-token"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func authMock() *mocks.AuthServiceMock {
	return &mocks.AuthServiceMock{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != validToken {
				return nil, errors.New("bad token")
			}
			return &auth.Claims{UserID: 7, Email: "author@example.com"}, nil
		},
	}
}

func newTestServer(articles ports.ArticleService, authSvc ports.AuthService, checkers ...ports.HealthChecker) *httpserver.Server {
	return httpserver.NewServer(&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}, quietLogger(), httpserver.ServerDeps{
		ArticleService: articles,
		AuthService:    authSvc,
		HealthCheckers: checkers,
	})
}

func do(t *testing.T, srv *httpserver.Server, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func sampleArticle(id int64, title string) *article.Article {
	return &article.Article{
		ID:              id,
		Title:           title,
		Description:     "d",
		PublicationDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Author:          user.Author{ID: 7, Email: "author@example.com"},
	}
}

func TestListArticles_PassesNormalizedQuery(t *testing.T) {
	var got article.Query
	svc := &mocks.ArticleServiceMock{
		FindManyFn: func(_ context.Context, q article.Query) (*article.List, error) {
			got = q
			return &article.List{Data: []*article.Article{sampleArticle(1, "A")}, Count: 11}, nil
		},
	}
	srv := newTestServer(svc, authMock())

	rec := do(t, srv, http.MethodGet, "/api/v1/articles?page=2&limit=500&author=3&publicationDate=2024-01", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, got.Page)
	assert.Equal(t, article.MaxLimit, got.Limit)
	require.NotNil(t, got.Author)
	assert.Equal(t, int64(3), *got.Author)
	assert.Equal(t, "2024-01", got.PublicationDate)

	var body struct {
		Data []struct {
			ID              int64  `json:"id"`
			PublicationDate string `json:"publicationDate"`
		} `json:"data"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 11, body.Count)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2024-01-02T00:00:00Z", body.Data[0].PublicationDate)
}

func TestGetArticle(t *testing.T) {
	svc := &mocks.ArticleServiceMock{
		FindOneFn: func(_ context.Context, id int64) (*article.Article, error) {
			if id == 1 {
				return sampleArticle(1, "A"), nil
			}
			return nil, article.ErrNotFound
		},
	}
	srv := newTestServer(svc, authMock())

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/articles/1", "", false).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/articles/2", "", false).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/v1/articles/abc", "", false).Code)
}

func TestCreateArticle(t *testing.T) {
	var gotAuthor int64
	svc := &mocks.ArticleServiceMock{
		CreateFn: func(_ context.Context, req *article.CreateArticleRequest, authorID int64) (*article.Article, error) {
			gotAuthor = authorID
			return sampleArticle(5, req.Title), nil
		},
	}
	srv := newTestServer(svc, authMock())
	body := `{"title":"A","description":"d","publicationDate":"2024-01-02"}`

	t.Run("requires token", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/articles", body, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("author comes from token", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/articles", body, true)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(7), gotAuthor)
	})

	t.Run("validates body", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/v1/articles", `{"description":"d","publicationDate":"2024-01-02"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Title")
	})
}

func TestCreateArticle_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unknown author", article.ErrAuthorNotFound, http.StatusUnprocessableEntity},
		{"bad date", article.ErrInvalidPublicationDate, http.StatusBadRequest},
		{"store fault", ports.NewStoreError("articles.insert", errors.New("connection refused")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mocks.ArticleServiceMock{
				CreateFn: func(context.Context, *article.CreateArticleRequest, int64) (*article.Article, error) {
					return nil, tc.err
				},
			}
			srv := newTestServer(svc, authMock())
			rec := do(t, srv, http.MethodPost, "/api/v1/articles", `{"title":"A","description":"d","publicationDate":"2024-01-02"}`, true)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestUpdateArticle(t *testing.T) {
	svc := &mocks.ArticleServiceMock{
		UpdateFn: func(_ context.Context, id int64, req *article.UpdateArticleRequest) (*article.Article, error) {
			if id != 1 {
				return nil, article.ErrNotFound
			}
			require.NotNil(t, req.Title)
			return sampleArticle(1, *req.Title), nil
		},
	}
	srv := newTestServer(svc, authMock())

	rec := do(t, srv, http.MethodPatch, "/api/v1/articles/1", `{"title":"B"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"B"`)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPatch, "/api/v1/articles/2", `{"title":"B"}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPatch, "/api/v1/articles/1", `{"title":""}`, true).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodPatch, "/api/v1/articles/1", `{"title":"B"}`, false).Code)
}

func TestDeleteArticle(t *testing.T) {
	var removed int64
	svc := &mocks.ArticleServiceMock{
		RemoveFn: func(_ context.Context, id int64) error {
			removed = id
			return nil
		},
	}
	srv := newTestServer(svc, authMock())

	rec := do(t, srv, http.MethodDelete, "/api/v1/articles/3", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, int64(3), removed)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodDelete, "/api/v1/articles/0", "", true).Code)
}
