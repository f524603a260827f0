package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
	"github.com/avatarctic/article-cache-api/internal/core/domain/user"
)

// httpError maps service errors to HTTP responses. Unknown errors are logged
// and reported as 500 without detail.
func (s *Server) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, article.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, article.ErrAuthorNotFound):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, article.ErrInvalidPublicationDate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, user.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Path()}).WithError(err).Error("request failed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
