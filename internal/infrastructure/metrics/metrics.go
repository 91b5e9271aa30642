package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters for the booking and payment flows.
type ClinicMetrics struct {
	consultationsBooked *prometheus.CounterVec
	checkoutSessions    *prometheus.CounterVec
	webhookEvents       *prometheus.CounterVec
	notifications       *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		consultationsBooked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemed",
			Subsystem: "consultations",
			Name:      "booked_total",
			Help:      "Total consultations created",
		}, []string{"channel", "type"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemed",
			Subsystem: "payments",
			Name:      "checkout_sessions_total",
			Help:      "Total checkout session attempts",
		}, []string{"status"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemed",
			Subsystem: "payments",
			Name:      "webhook_events_total",
			Help:      "Total payment webhook deliveries by event kind and outcome",
		}, []string{"kind", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemed",
			Subsystem: "notifications",
			Name:      "emails_total",
			Help:      "Total notification emails by template and status",
		}, []string{"template", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.consultationsBooked, m.checkoutSessions, m.webhookEvents, m.notifications)
	return m
}

func (m *ClinicMetrics) ObserveBooking(channel, consultationType string) {
	if m == nil {
		return
	}
	m.consultationsBooked.WithLabelValues(channel, consultationType).Inc()
}

func (m *ClinicMetrics) ObserveCheckout(status string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(status).Inc()
}

func (m *ClinicMetrics) ObserveWebhook(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *ClinicMetrics) ObserveNotification(template string, sent bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !sent {
		status = "failed"
	}
	m.notifications.WithLabelValues(template, status).Inc()
}
