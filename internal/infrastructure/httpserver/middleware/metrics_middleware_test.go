package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver/middleware"
)

func TestMetricsMiddleware_LabelsByRouteTemplate(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "t_duration_seconds"}, []string{"method", "endpoint"})

	e := echo.New()
	e.Use(middleware.NewMetricsMiddleware(total, duration, "/metrics").CollectHTTPMetrics())
	e.GET("/articles/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/articles/1", "/articles/2", "/metrics"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(total.WithLabelValues("GET", "/articles/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(total))
}
