// Package metrics объявляет счётчики Prometheus портала.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Исходы операций.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSimulated = "simulated"
)

// Metrics — набор счётчиков портала.
type Metrics struct {
	Activations       *prometheus.CounterVec
	AuthRequests      *prometheus.CounterVec
	PaymentsInitiated *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licence_portal",
			Name:      "activations_total",
			Help:      "Licence activation attempts by flow and outcome.",
		}, []string{"flow", "outcome"}),
		AuthRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licence_portal",
			Name:      "auth_requests_total",
			Help:      "Login and registration attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		PaymentsInitiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licence_portal",
			Name:      "payments_initiated_total",
			Help:      "Payment initiation attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Activations, m.AuthRequests, m.PaymentsInitiated)
	return m
}

// NewNop возвращает счётчики, не зарегистрированные ни в одном реестре.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Activation учитывает попытку активации.
func (m *Metrics) Activation(flow, outcome string) {
	m.Activations.WithLabelValues(flow, outcome).Inc()
}

// Auth учитывает попытку входа или регистрации.
func (m *Metrics) Auth(op, outcome string) {
	m.AuthRequests.WithLabelValues(op, outcome).Inc()
}

// Payment учитывает попытку инициировать платёж.
func (m *Metrics) Payment(outcome string) {
	m.PaymentsInitiated.WithLabelValues(outcome).Inc()
}
