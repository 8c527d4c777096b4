// Package metrics exposes Prometheus instrumentation for the console.
package metrics

import (
	"net/http"

	"github.com/cppe-issia/console/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LoginOutcomeSuccess = "success"
	LoginOutcomeFailure = "failure"
)

// Metrics holds the console's collectors and the registry they are
// registered with.
type Metrics struct {
	Registry *prometheus.Registry

	// APIRequests counts calls to the CPPE API.
	// Labels:
	//   - code: HTTP status code of the response
	//   - method: HTTP method of the request
	APIRequests *prometheus.CounterVec
	// APIRequestDuration measures the latency of calls to the CPPE API.
	APIRequestDuration *prometheus.HistogramVec
	// LoginAttempts counts login attempts.
	// Labels:
	//   - outcome: "success" or "failure"
	LoginAttempts *prometheus.CounterVec
	// SessionInvalidations counts sessions ended by a 401.
	SessionInvalidations prometheus.Counter
}

// New returns Metrics registered with a fresh registry that also carries
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cppe_console_api_requests_total",
				Help: "Total number of requests issued to the CPPE API",
			},
			[]string{"code", "method"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cppe_console_api_request_duration_seconds",
				Help:    "Duration of requests issued to the CPPE API",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cppe_console_login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"outcome"},
		),
		SessionInvalidations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cppe_console_session_invalidations_total",
				Help: "Total number of sessions invalidated by a 401 from the API",
			},
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.APIRequests,
		m.APIRequestDuration,
		m.LoginAttempts,
		m.SessionInvalidations,
	)
	return m
}

// InstrumentTransport wraps next so that every request through it is
// counted and timed. It is meant for sdk.APIClientOptions.WrapTransport.
func (m *Metrics) InstrumentTransport(
	next http.RoundTripper,
) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(
		m.APIRequests,
		promhttp.InstrumentRoundTripperDuration(m.APIRequestDuration, next),
	)
}

// RecordLogin counts a login attempt with the given outcome.
func (m *Metrics) RecordLogin(success bool) {
	outcome := LoginOutcomeFailure
	if success {
		outcome = LoginOutcomeSuccess
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// CountInvalidations subscribes to receiver and counts every
// SessionInvalidated event. It returns the unsubscribe function.
func (m *Metrics) CountInvalidations(receiver events.Receiver) func() {
	return receiver.Subscribe(func(e events.Event) {
		if e.Type == events.SessionInvalidated {
			m.SessionInvalidations.Inc()
		}
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
