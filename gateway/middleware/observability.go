package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokenforge/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Observability instruments handlers with request metrics and structured
// request logging.
type Observability struct {
	logger *slog.Logger
}

// NewObservability creates the middleware. A nil logger disables request
// logging but keeps the metrics.
func NewObservability(logger *slog.Logger) *Observability {
	return &Observability{logger: logger}
}

// Middleware records metrics for every request under the given route label.
func (o *Observability) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics := observability.HTTP()
			metrics.TrackInflight(1)
			defer metrics.TrackInflight(-1)

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)
			metrics.Observe(route, r.Method, strconv.Itoa(recorder.status), duration)
			if o != nil && o.logger != nil {
				o.logger.Debug("request served",
					"route", route,
					"method", r.Method,
					"path", r.URL.Path,
					"status", recorder.status,
					"duration_ms", duration.Milliseconds(),
				)
			}
		})
	}
}

// MetricsHandler exposes the process-wide Prometheus registry.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
