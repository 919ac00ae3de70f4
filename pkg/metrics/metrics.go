// Package metrics provides Prometheus metrics for the SquadPulse service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus series the service exposes.
type Manager struct {
	registry *prometheus.Registry

	updatesProcessed  *prometheus.CounterVec
	updatesRejected   prometheus.Counter
	cascadesEvaluated *prometheus.CounterVec
	notifications     prometheus.Counter
	httpRequests      *prometheus.CounterVec
}

// NewManager creates a manager with its own registry, so tests can build
// independent instances without duplicate-registration panics.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Manager{
		registry: registry,
		updatesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squadpulse",
			Subsystem: "integrity",
			Name:      "updates_processed_total",
			Help:      "Accepted update batches by source.",
		}, []string{"source"}),
		updatesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "squadpulse",
			Subsystem: "integrity",
			Name:      "updates_rejected_total",
			Help:      "Update batches rejected by validation.",
		}),
		cascadesEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squadpulse",
			Subsystem: "integrity",
			Name:      "cascades_evaluated_total",
			Help:      "Cascade rule evaluations by source field.",
		}, []string{"source_field"}),
		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "squadpulse",
			Subsystem: "integrity",
			Name:      "significant_changes_total",
			Help:      "Significant-field change notifications emitted.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squadpulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}

func (m *Manager) UpdateProcessed(source string) {
	m.updatesProcessed.WithLabelValues(source).Inc()
}

func (m *Manager) UpdateRejected() {
	m.updatesRejected.Inc()
}

func (m *Manager) CascadeEvaluated(sourceField string) {
	m.cascadesEvaluated.WithLabelValues(sourceField).Inc()
}

func (m *Manager) NotificationEmitted() {
	m.notifications.Inc()
}

func (m *Manager) HTTPRequest(method, route, status string) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Handler serves the manager's registry at /metrics.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
