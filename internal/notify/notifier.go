package notify

import (
	"context"
	"fmt"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// NotifierConfig holds addresses and URLs used when building emails.
type NotifierConfig struct {
	OpsEmail  string
	Templates TemplateConfig
}

// Notifier is the single entry point services use to send email.
// Lead and booking notifications are queued; reminders are sent inline so the
// reminder job can count per-lead outcomes.
type Notifier struct {
	dispatcher *Dispatcher
	sender     EmailSender
	cfg        NotifierConfig
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewNotifier wires a notifier. A nil dispatcher disables queued
// notifications; a nil sender disables reminders.
func NewNotifier(dispatcher *Dispatcher, sender EmailSender, cfg NotifierConfig, logger *logging.Logger, m *metrics.Metrics) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{dispatcher: dispatcher, sender: sender, cfg: cfg, logger: logger, metrics: m}
}

// NotifyNewLead queues the operations alert for a new lead. Failures are logged only.
func (n *Notifier) NotifyNewLead(ctx context.Context, d LeadDetails) {
	if n == nil || n.dispatcher == nil || n.cfg.OpsEmail == "" {
		return
	}
	msg, err := LeadNotificationEmail(n.cfg.OpsEmail, d)
	if err != nil {
		n.logger.Error("failed to build lead notification", "lead_id", d.ID, "error", err)
		return
	}
	if _, err := n.dispatcher.Enqueue(ctx, KindLeadNotification, msg); err != nil {
		n.logger.Warn("lead notification not queued", "lead_id", d.ID, "error", err)
	}
}

// NotifyBookingConfirmed queues the customer confirmation. Failures are logged only.
func (n *Notifier) NotifyBookingConfirmed(ctx context.Context, d BookingDetails) {
	if n == nil || n.dispatcher == nil || d.Email == "" {
		return
	}
	msg, err := BookingConfirmationEmail(n.cfg.Templates, d)
	if err != nil {
		n.logger.Error("failed to build booking confirmation", "booking_id", d.BookingID, "error", err)
		return
	}
	if _, err := n.dispatcher.Enqueue(ctx, KindBookingConfirmation, msg); err != nil {
		n.logger.Warn("booking confirmation not queued", "booking_id", d.BookingID, "error", err)
	}
}

// SendReminder delivers a reminder synchronously. Any failure is a DependencyError.
func (n *Notifier) SendReminder(ctx context.Context, d ReminderDetails) error {
	if n == nil || n.sender == nil {
		return apperr.Dependency("email", ErrEmailDisabled)
	}
	msg, err := ReminderEmail(n.cfg.Templates, d)
	if err != nil {
		return fmt.Errorf("notify: build reminder: %w", err)
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.metrics.ObserveNotification(string(KindReminder), "failed")
		return apperr.Dependency("email", err)
	}
	n.metrics.ObserveNotification(string(KindReminder), "sent")
	return nil
}
