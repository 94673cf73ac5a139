// Package metrics exposes authentication counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
	OutcomeExpired = "expired"
	OutcomeMissing = "missing"

	MethodPassword = "password"
	MethodToken    = "token"
)

// AuthMetrics is safe to use through a nil pointer; every method is then a
// no-op.
type AuthMetrics struct {
	registry      *prometheus.Registry
	logins        *prometheus.CounterVec
	verifications *prometheus.CounterVec
	gate          *prometheus.CounterVec
	forbidden     prometheus.Counter
}

func New(namespace string) *AuthMetrics {
	reg := prometheus.NewRegistry()
	m := &AuthMetrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_verifications_total",
			Help:      "Token verifications by result.",
		}, []string{"result"}),
		gate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_gate_requests_total",
			Help:      "Protected requests by gate outcome.",
		}, []string{"outcome"}),
		forbidden: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ownership_denials_total",
			Help:      "Mutations rejected because the caller does not own the resource.",
		}),
	}
	reg.MustRegister(
		m.logins, m.verifications, m.gate, m.forbidden,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *AuthMetrics) Login(method, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, outcome).Inc()
}

func (m *AuthMetrics) TokenVerified(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

func (m *AuthMetrics) Gate(outcome string) {
	if m == nil {
		return
	}
	m.gate.WithLabelValues(outcome).Inc()
}

func (m *AuthMetrics) OwnershipDenied() {
	if m == nil {
		return
	}
	m.forbidden.Inc()
}

func (m *AuthMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *AuthMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
