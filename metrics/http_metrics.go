package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	StatusCodeCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"service", "category"},
	)
)

// HTTPMetrics records per-route request metrics for one service.
type HTTPMetrics struct {
	ServiceName string
}

// NewHTTPMetrics registers the HTTP and domain collectors on reg.
func NewHTTPMetrics(serviceName string, reg prometheus.Registerer) *HTTPMetrics {
	reg.MustRegister(
		RequestCounter,
		RequestDurationHistogram,
		StatusCodeCategoryCounter,
		ReceiptsCreated,
		ArtifactsIssued,
		ArtifactFailures,
		ConsentsAccepted,
		NotificationFailures,
	)
	return &HTTPMetrics{ServiceName: serviceName}
}

func category(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware is a mux middleware; it labels requests by route template, not raw path,
// so client ids never become label values.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		statusStr := strconv.Itoa(sw.status)

		RequestCounter.WithLabelValues(m.ServiceName, r.Method, path, statusStr).Inc()
		StatusCodeCategoryCounter.WithLabelValues(m.ServiceName, category(sw.status)).Inc()
		RequestDurationHistogram.WithLabelValues(m.ServiceName, r.Method, path, statusStr).
			Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
