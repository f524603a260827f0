package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/article-cache-api/internal/core/domain/article"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver/helpers"
)

// Article handlers
func (s *Server) listArticles(c echo.Context) error {
	q := article.QueryFromValues(c.QueryParams())

	list, err := s.articleSvc.FindMany(c.Request().Context(), q)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (s *Server) getArticle(c echo.Context) error {
	id, err := helpers.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	a, err := s.articleSvc.FindOne(c.Request().Context(), id)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, a)
}

func (s *Server) createArticle(c echo.Context) error {
	var req article.CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authorID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	created, err := s.articleSvc.Create(c.Request().Context(), &req, authorID)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateArticle(c echo.Context) error {
	id, err := helpers.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req article.UpdateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := s.articleSvc.Update(c.Request().Context(), id, &req)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteArticle(c echo.Context) error {
	id, err := helpers.ParseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.articleSvc.Remove(c.Request().Context(), id); err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
