// Package metrics defines the Prometheus collectors exported at /metrics.
//
// All methods on a nil *Metrics are no-ops so components can run without a registry.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/splitright/internal/calculator"
)

const namespace = "splitright"

// Metrics holds every collector of the server.
type Metrics struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	plansComputed       prometheus.Counter
	engineFailures      *prometheus.CounterVec
	fallbackActivations prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		plansComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_plans_total",
			Help:      "Settlement plans computed.",
		}),
		engineFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_failures_total",
			Help:      "Balance and settlement computations that failed, by kind.",
		}, []string{"kind"}),
		fallbackActivations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_fallback_activations_total",
			Help:      "Times the storage layer switched to the local store.",
		}),
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// PlanComputed counts a successful settlement plan.
func (m *Metrics) PlanComputed() {
	if m == nil {
		return
	}
	m.plansComputed.Inc()
}

// EngineFailure counts an engine error by its kind.
func (m *Metrics) EngineFailure(err error) {
	if m == nil || err == nil {
		return
	}
	m.engineFailures.WithLabelValues(FailureKind(err)).Inc()
}

// FallbackActivated counts a switch to the local store.
func (m *Metrics) FallbackActivated() {
	if m == nil {
		return
	}
	m.fallbackActivations.Inc()
}

// FailureKind names the engine error class used as the "kind" label.
func FailureKind(err error) string {
	var validation *calculator.ValidationError
	var inconsistency *calculator.InconsistencyError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &inconsistency):
		return "inconsistency"
	default:
		return "other"
	}
}
