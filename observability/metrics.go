// Package observability registers the Prometheus metrics of the board.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsTotal counts message submissions by outcome.
	PostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_posts_total",
			Help: "Message submissions by result",
		},
		[]string{"result"},
	)

	// AttachmentsWritten counts persisted attachments per kind.
	AttachmentsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_attachments_written_total",
			Help: "Attachments persisted to disk by kind",
		},
		[]string{"kind"},
	)

	// DeletesTotal counts delete requests by outcome.
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_deletes_total",
			Help: "Message deletions by result",
		},
		[]string{"result"},
	)

	// StoreOperationDuration times record store calls per backend.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_store_operation_duration_seconds",
			Help:    "Record store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	GCRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_gc_runs_total",
		Help: "Attachment garbage collection runs",
	})

	GCFilesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_gc_files_deleted_total",
		Help: "Orphaned attachment files deleted by the collector",
	})

	GCDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_gc_duration_seconds",
		Help:    "Attachment garbage collection duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Result turns an error into the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStore records the latency of one store operation started at start.
// Meant to be deferred: defer ObserveStore("json", "append", time.Now()).
func ObserveStore(backend, operation string, start time.Time) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

// HTTPMetrics records count and latency per chi route pattern, keeping label cardinality bounded.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
