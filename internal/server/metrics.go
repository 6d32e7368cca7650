package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsNamespace prefixes every metric exported by this server.
const metricsNamespace = "ragbase"

// serverMetrics holds the Prometheus instruments for the HTTP server.
// All instruments are registered against the configured Registerer so tests
// can use an isolated registry.
type serverMetrics struct {
	// httpRequests counts completed requests by handler and status code.
	httpRequests *prometheus.CounterVec
	// httpDuration observes request latency by handler.
	httpDuration *prometheus.HistogramVec

	// chatTotal counts answered chat questions.
	chatTotal prometheus.Counter
	// chatDuration observes end-to-end chat latency, including retrieval
	// and generation.
	chatDuration prometheus.Histogram

	// uploadTotal counts successfully ingested documents.
	uploadTotal prometheus.Counter
	// uploadFailures counts rejected or failed ingestions.
	uploadFailures prometheus.Counter
	// chunksIndexed counts chunks written to the knowledge base.
	chunksIndexed prometheus.Counter

	// ticketsTotal counts triaged support tickets by urgency.
	ticketsTotal *prometheus.CounterVec
}

// newServerMetrics registers the server's instruments on reg.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Completed HTTP requests by handler and status code.",
		}, []string{"handler", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by handler.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		chatTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "chat",
			Name:      "questions_total",
			Help:      "Questions answered against the knowledge base.",
		}),
		chatDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "chat",
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer latency, including retrieval and generation.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		uploadTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upload",
			Name:      "documents_total",
			Help:      "Documents successfully ingested into the knowledge base.",
		}),
		uploadFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upload",
			Name:      "failures_total",
			Help:      "Document ingestions rejected or failed.",
		}),
		chunksIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upload",
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the knowledge base.",
		}),
		ticketsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "support",
			Name:      "tickets_total",
			Help:      "Support tickets triaged, by urgency.",
		}, []string{"urgency"}),
	}
}

// instrument wraps next with per-handler request counting and latency
// observation. handler is the metric label, not the route pattern.
func (m *serverMetrics) instrument(handler string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)

		m.httpRequests.WithLabelValues(handler, strconv.Itoa(rw.status)).Inc()
		m.httpDuration.WithLabelValues(handler).Observe(time.Since(start).Seconds())
	})
}
