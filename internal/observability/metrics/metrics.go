package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for lead intake, booking webhooks,
// reminder runs and outbound notifications.
type Metrics struct {
	leadsTotal         *prometheus.CounterVec
	webhookEventsTotal *prometheus.CounterVec
	remindersTotal     *prometheus.CounterVec
	reminderRunSeconds prometheus.Histogram
	notificationsTotal *prometheus.CounterVec
}

// New registers the application metrics on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "b2bee",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead-capture submissions by result",
		}, []string{"result"}),
		webhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "b2bee",
			Subsystem: "bookings",
			Name:      "webhook_events_total",
			Help:      "Cal.com webhook events by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "b2bee",
			Subsystem: "reminders",
			Name:      "leads_total",
			Help:      "Leads handled by the reminder job by result",
		}, []string{"result"}),
		reminderRunSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "b2bee",
			Subsystem: "reminders",
			Name:      "run_duration_seconds",
			Help:      "Duration of reminder job invocations",
			Buckets:   prometheus.DefBuckets,
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "b2bee",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Outbound notification emails by kind and status",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsTotal, m.webhookEventsTotal, m.remindersTotal, m.reminderRunSeconds, m.notificationsTotal)
	return m
}

func (m *Metrics) ObserveLead(result string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWebhook(trigger, outcome string) {
	if m == nil {
		return
	}
	if trigger == "" {
		trigger = "unknown"
	}
	m.webhookEventsTotal.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) ObserveReminders(result string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.remindersTotal.WithLabelValues(result).Add(float64(count))
}

func (m *Metrics) ObserveReminderRun(seconds float64) {
	if m == nil {
		return
	}
	m.reminderRunSeconds.Observe(seconds)
}

func (m *Metrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, status).Inc()
}
