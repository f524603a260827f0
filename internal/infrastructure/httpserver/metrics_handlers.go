package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avatarctic/article-cache-api/internal/core/ports"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_cache_requests_total",
			Help: "Cache lookups by resource and result (hit or miss)",
		},
		[]string{"resource", "result"},
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_cache_errors_total",
			Help: "Cache operations that failed and were skipped",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(cacheRequests)
	prometheus.MustRegister(cacheErrors)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// CacheMetrics reports article cache outcomes to Prometheus.
type CacheMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewCacheMetrics returns a ports.CacheMetrics backed by the process-wide collectors.
func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{requests: cacheRequests, errors: cacheErrors}
}

func (m *CacheMetrics) Hit(resource string)  { m.requests.WithLabelValues(resource, "hit").Inc() }
func (m *CacheMetrics) Miss(resource string) { m.requests.WithLabelValues(resource, "miss").Inc() }
func (m *CacheMetrics) Error(op string)      { m.errors.WithLabelValues(op).Inc() }

var _ ports.CacheMetrics = (*CacheMetrics)(nil)

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":          "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration":        "Histogram for HTTP request duration by method, endpoint",
			"article_cache_requests_total": "Counter for cache lookups by resource, result",
			"article_cache_errors_total":   "Counter for failed cache operations by op",
			"metrics_endpoint":             "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

// Metrics handler
func (s *Server) metricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsEndpoint wraps the metrics handler with logging
func (s *Server) metricsEndpoint(c echo.Context) error {
	if s.logger != nil {
		s.logger.Debug("Serving Prometheus metrics")
	}
	handler := s.metricsHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
