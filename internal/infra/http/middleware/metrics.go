package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
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
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	consultationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_submissions_total",
			Help: "Accepted consultation submissions by duplicate-guard verdict",
		},
		[]string{"verdict"},
	)

	webhookDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_webhook_dispatch_total",
			Help: "Webhook dispatch attempts by result",
		},
		[]string{"result"},
	)

	pipelineStepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultation_step_failures_total",
			Help: "Soft failures of submission pipeline steps",
		},
		[]string{"step"},
	)

	// PendingDeliveries is set by the pending-delivery sweep.
	PendingDeliveries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "consultation_pending_deliveries",
			Help: "Submissions older than the stale threshold still awaiting webhook delivery",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern labels by chi pattern so submission ids don't explode cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// PrometheusRecorder feeds pipeline events into the business counters.
type PrometheusRecorder struct{}

func (PrometheusRecorder) RecordSubmission(verdict string) {
	consultationSubmissions.WithLabelValues(verdict).Inc()
}

func (PrometheusRecorder) RecordDispatch(result string) {
	webhookDispatches.WithLabelValues(result).Inc()
}

func (PrometheusRecorder) RecordStepFailure(step string) {
	pipelineStepFailures.WithLabelValues(step).Inc()
}
