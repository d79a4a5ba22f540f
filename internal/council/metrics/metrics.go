// Package metrics exposes Prometheus instrumentation for the council
// service: HTTP traffic plus the provisioning-specific counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "council_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "council_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestsSubmitted counts accepted registration requests.
	RequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "council_registration_requests_submitted_total",
		Help: "Registration requests accepted by intake.",
	})

	// AccountsProvisioned counts successfully provisioned accounts by kind
	// and entry path (approve or bulk).
	AccountsProvisioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_accounts_provisioned_total",
			Help: "Accounts provisioned, by kind and path.",
		},
		[]string{"kind", "path"},
	)

	// ProvisioningRollbacks counts compensating identity deletions after a
	// failed profile insert.
	ProvisioningRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "council_provisioning_rollbacks_total",
		Help: "Compensating identity deletions after failed profile inserts.",
	})

	// BulkItems counts per-item outcomes of bulk provisioning batches.
	BulkItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_bulk_items_total",
			Help: "Bulk provisioning items, by result.",
		},
		[]string{"result"},
	)
)

// Handler serves the metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps an http.Handler with traffic metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
