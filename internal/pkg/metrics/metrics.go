// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fulfillment"

// Metrics groups every collector. A nil *Metrics is valid and records nothing,
// so components can be built without instrumentation in tests.
type Metrics struct {
	Requests             *prometheus.CounterVec
	LatencyMS            *prometheus.HistogramVec
	OrderTransitions     *prometheus.CounterVec
	NotificationAttempts *prometheus.CounterVec
	PaymentVerifications *prometheus.CounterVec
	GatewayCalls         *prometheus.CounterVec
	OtpFailures          prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Committed order transitions by event.",
		}, []string{"event"}),
		NotificationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_attempts_total",
			Help:      "Notification attempts by channel, template and outcome.",
		}, []string{"channel", "template", "outcome"}),
		PaymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verifications_total",
			Help:      "Gateway signature verifications by outcome.",
		}, []string{"outcome"}),
		GatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_calls_total",
			Help:      "Payment gateway calls by outcome.",
		}, []string{"outcome"}),
		OtpFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_otp_failures_total",
			Help:      "Rejected delivery code submissions.",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.LatencyMS,
		m.OrderTransitions,
		m.NotificationAttempts,
		m.PaymentVerifications,
		m.GatewayCalls,
		m.OtpFailures,
	)
	return m
}

func (m *Metrics) Transition(event string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(event).Inc()
}

func (m *Metrics) Notification(channel, template string, success bool) {
	if m == nil {
		return
	}
	m.NotificationAttempts.WithLabelValues(channel, template, outcome(success)).Inc()
}

func (m *Metrics) Verification(verified bool) {
	if m == nil {
		return
	}
	m.PaymentVerifications.WithLabelValues(outcome(verified)).Inc()
}

func (m *Metrics) Gateway(success bool) {
	if m == nil {
		return
	}
	m.GatewayCalls.WithLabelValues(outcome(success)).Inc()
}

func (m *Metrics) OtpFailure() {
	if m == nil {
		return
	}
	m.OtpFailures.Inc()
}

func (m *Metrics) Request(handler, status string, latencyMS float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(latencyMS)
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
