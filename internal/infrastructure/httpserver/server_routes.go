package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)

	articles := api.Group("/articles")
	articles.GET("", s.listArticles)
	articles.GET("/:id", s.getArticle)

	requireJWT := s.middleware.JWT.RequireJWT()
	articles.POST("", s.createArticle, requireJWT)
	articles.PATCH("/:id", s.updateArticle, requireJWT)
	articles.DELETE("/:id", s.deleteArticle, requireJWT)
}
