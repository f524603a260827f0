package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/article-cache-api/internal/core/domain/auth"
)

// Auth handlers
func (s *Server) register(c echo.Context) error {
	var req auth.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := s.authSvc.Register(c.Request().Context(), &req)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusCreated, tokens)
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		return s.httpError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}
