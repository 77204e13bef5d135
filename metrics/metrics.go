package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	syncRuns     *prometheus.CounterVec // total sync runs
	syncDuration prometheus.Histogram   // time to sync
	reconciles   *prometheus.CounterVec // reconciliation outcomes per resource
	apiRequests  *prometheus.CounterVec // remote API requests
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "ns1_sync"

	m := &Metrics{
		registry: registry,

		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of synchronization runs",
		}, []string{"status"}),

		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of synchronization runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "Total resource reconciliations by outcome",
		}, []string{"kind", "outcome"}),

		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total NS1 API requests",
		}, []string{"kind", "operation", "status"}),
	}

	registry.MustRegister(
		m.syncRuns,
		m.syncDuration,
		m.reconciles,
		m.apiRequests,
	)
	return m
}

func (m *Metrics) IncSyncRun(success bool) {
	m.syncRuns.WithLabelValues(boolToResult(success)).Inc()
}

func (m *Metrics) SetSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(duration.Seconds())
}

// IncReconcile records one reconciliation outcome: changed, unchanged or
// failed.
func (m *Metrics) IncReconcile(kind, outcome string) {
	if !isValidOutcome(outcome) {
		return
	}
	m.reconciles.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncAPIRequest(kind, operation string, success bool) {
	if !isValidOperation(operation) {
		return
	}
	m.apiRequests.WithLabelValues(kind, operation, boolToResult(success)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func isValidOperation(op string) bool {
	switch op {
	case "get", "create", "update", "delete":
		return true
	}
	return false
}

func isValidOutcome(outcome string) bool {
	switch outcome {
	case "changed", "unchanged", "failed":
		return true
	}
	return false
}
