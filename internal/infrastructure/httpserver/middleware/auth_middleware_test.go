package middleware_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver/helpers"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/avatarctic/article-cache-api/test/mocks"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestJWTMiddleware_MissingTokenReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewJWTMiddleware(&tmocks.AuthServiceMock{}, quietLogger())
	handler := m.RequireJWT()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestJWTMiddleware_InvalidTokenReturns401(t *testing.T) {
	e := echo.New()
	authMock := &tmocks.AuthServiceMock{ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
		return nil, fmt.Errorf("bad")
	}}
	m := middleware.NewJWTMiddleware(authMock, quietLogger())
	handler := m.RequireJWT()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestJWTMiddleware_ValidTokenSetsUserContext(t *testing.T) {
	e := echo.New()
	authMock := &tmocks.AuthServiceMock{ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
		require.Equal(t, "good", token)
		return &auth.Claims{UserID: 42, Email: "u@example.com"}, nil
	}}
	m := middleware.NewJWTMiddleware(authMock, quietLogger())

	var gotID int64
	var gotEmail string
	handler := m.RequireJWT()(func(c echo.Context) error {
		var err error
		gotID, err = helpers.GetUserIDFromContext(c)
		if err != nil {
			return err
		}
		gotEmail, err = helpers.GetUserEmailFromContext(c)
		if err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	require.Equal(t, int64(42), gotID)
	require.Equal(t, "u@example.com", gotEmail)
}
