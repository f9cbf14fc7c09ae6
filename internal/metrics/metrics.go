// Package metrics holds the Prometheus collectors of the service. They are
// registered on the default registry and exposed at GET /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	entityOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_entity_operations_total",
			Help: "Successful mutations per CRM entity",
		},
		[]string{"entity", "operation"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"}, // success, unknown_email, bad_password, invalid
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_cache_lookups_total",
			Help: "Response cache lookups by outcome",
		},
		[]string{"result"}, // hit, miss
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// Middleware records request count and latency by route pattern. Errors are
// handed to the Echo error handler first so the recorded status is the one
// the client sees.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func RecordEntityOperation(entity, operation string) {
	entityOperations.WithLabelValues(entity, operation).Inc()
}

func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}
