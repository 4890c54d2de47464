package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLead("created")
	m.ObserveLead("created")
	m.ObserveWebhook("BOOKING_CREATED", "created")
	m.ObserveWebhook("", "rejected")
	m.ObserveReminders("sent", 3)
	m.ObserveReminders("failed", 0)
	m.ObserveReminderRun(0.25)
	m.ObserveNotification("lead_notification", "sent")

	if got := counterValue(t, reg, "b2bee_leads_submissions_total", map[string]string{"result": "created"}); got != 2 {
		t.Fatalf("expected 2 created leads, got %v", got)
	}
	if got := counterValue(t, reg, "b2bee_bookings_webhook_events_total", map[string]string{"trigger": "unknown", "outcome": "rejected"}); got != 1 {
		t.Fatalf("expected unknown trigger label, got %v", got)
	}
	if got := counterValue(t, reg, "b2bee_reminders_leads_total", map[string]string{"result": "sent"}); got != 3 {
		t.Fatalf("expected 3 sent reminders, got %v", got)
	}
	if got := counterValue(t, reg, "b2bee_reminders_leads_total", map[string]string{"result": "failed"}); got != 0 {
		t.Fatalf("expected zero-count observations to be skipped, got %v", got)
	}
	if got := counterValue(t, reg, "b2bee_notify_emails_total", map[string]string{"kind": "lead_notification", "status": "sent"}); got != 1 {
		t.Fatalf("expected 1 notification, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLead("created")
	m.ObserveWebhook("PING", "ack")
	m.ObserveReminders("sent", 1)
	m.ObserveReminderRun(0.1)
	m.ObserveNotification("reminder", "failed")
}
