package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/config"
	"github.com/talentseek/b2beelanding/internal/leads"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

var remindersTracer = otel.Tracer("b2bee.internal.reminders")

// LeadStore is the part of the lead repository the job needs.
type LeadStore interface {
	ListReminderCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*leads.Lead, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	FindLatestByEmail(ctx context.Context, email string) (*leads.Lead, error)
}

// Sender delivers one reminder email synchronously.
type Sender interface {
	SendReminder(ctx context.Context, d notify.ReminderDetails) error
}

// Results are the per-run counters returned to the trigger.
type Results struct {
	Total   int  `json:"total"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped,omitempty"`
}

// Job sends "book your demo" reminders to leads that have not booked.
type Job struct {
	store   LeadStore
	sender  Sender
	locker  Locker
	delay   time.Duration
	limit   int
	logger  *logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customises a Job.
type Option func(*Job)

// WithLocker guards runs with locker.
func WithLocker(locker Locker) Option {
	return func(j *Job) { j.locker = locker }
}

// WithDelay sets how old a lead must be before it is reminded.
func WithDelay(d time.Duration) Option {
	return func(j *Job) {
		if d >= 0 {
			j.delay = d
		}
	}
}

// WithBatchSize sets the per-run ceiling. Values outside 1..50 are ignored.
func WithBatchSize(n int) Option {
	return func(j *Job) {
		if n > 0 && n <= config.MaxReminderBatch {
			j.limit = n
		}
	}
}

// NewJob creates a reminder job.
func NewJob(store LeadStore, sender Sender, logger *logging.Logger, m *metrics.Metrics, opts ...Option) *Job {
	if store == nil {
		panic("reminders: lead store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	j := &Job{
		store:   store,
		sender:  sender,
		delay:   time.Minute,
		limit:   config.MaxReminderBatch,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run reminds every eligible lead in one batch. A failed send is counted
// and the batch moves on; only a failing candidate query aborts the run.
func (j *Job) Run(ctx context.Context) (Results, error) {
	ctx, span := remindersTracer.Start(ctx, "reminders.run")
	defer span.End()
	started := time.Now()
	defer func() { j.metrics.ObserveReminderRun(time.Since(started).Seconds()) }()

	if j.locker != nil {
		release, ok, err := j.locker.Acquire(ctx)
		if err != nil {
			// Redis being down should not stop reminders; the conditional mark still holds.
			j.logger.Warn("reminder lock unavailable, running unlocked", "error", err)
		} else if !ok {
			j.logger.Info("reminder run skipped, another run holds the lock")
			span.SetAttributes(attribute.Bool("reminders.skipped", true))
			return Results{Skipped: true}, nil
		} else {
			defer release()
		}
	}

	now := j.now().UTC()
	cutoff := now.Add(-j.delay)
	candidates, err := j.store.ListReminderCandidates(ctx, cutoff, j.limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list candidates")
		return Results{}, fmt.Errorf("reminders: list candidates: %w", err)
	}

	res := Results{Total: len(candidates)}
	for _, lead := range candidates {
		sent, err := j.remind(ctx, lead)
		switch {
		case err != nil:
			res.Failed++
			j.logger.Warn("reminder failed", "lead_id", lead.ID, "email", lead.Email, "error", err)
		case sent:
			res.Sent++
		}
	}

	span.SetAttributes(
		attribute.Int("reminders.total", res.Total),
		attribute.Int("reminders.sent", res.Sent),
		attribute.Int("reminders.failed", res.Failed),
	)
	j.metrics.ObserveReminders("sent", res.Sent)
	j.metrics.ObserveReminders("failed", res.Failed)
	j.logger.Info("reminder run completed", "total", res.Total, "sent", res.Sent, "failed", res.Failed, "cutoff", cutoff)
	return res, nil
}

// remind sends and marks one lead. sent is false when another run marked it first.
func (j *Job) remind(ctx context.Context, lead *leads.Lead) (sent bool, err error) {
	if j.sender == nil {
		return false, apperr.Dependency("email", notify.ErrEmailDisabled)
	}
	if err := j.sender.SendReminder(ctx, details(lead)); err != nil {
		return false, err
	}
	marked, err := j.store.MarkReminderSent(ctx, lead.ID, j.now().UTC())
	if err != nil {
		return false, fmt.Errorf("reminders: mark %s: %w", lead.ID, err)
	}
	if !marked {
		j.logger.Info("reminder already marked by another run", "lead_id", lead.ID)
		j.metrics.ObserveReminders("duplicate", 1)
	}
	return marked, nil
}

// TestOutcome is the result of a single on-demand reminder.
type TestOutcome struct {
	Sent    bool
	Message string
	Lead    *leads.Lead
	SentAt  *time.Time
}

// SendTest reminds the newest lead with email right away, skipping the delay
// but not the eligibility rules.
func (j *Job) SendTest(ctx context.Context, email string) (*TestOutcome, error) {
	ctx, span := remindersTracer.Start(ctx, "reminders.send_test")
	defer span.End()

	email = leads.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Invalid("email", "Email is required")
	}
	lead, err := j.store.FindLatestByEmail(ctx, email)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return nil, &apperr.NotFoundError{Resource: "lead", Key: email, Message: "No lead found with email: " + email}
	}
	if err != nil {
		return nil, fmt.Errorf("reminders: find lead: %w", err)
	}

	if lead.ReminderSentAt != nil {
		return &TestOutcome{Message: "Reminder already sent to this lead", Lead: lead, SentAt: lead.ReminderSentAt}, nil
	}
	if lead.Status != leads.StatusNew {
		return &TestOutcome{Message: fmt.Sprintf("Lead status is %s, not eligible for reminder", lead.Status), Lead: lead}, nil
	}

	sent, err := j.remind(ctx, lead)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !sent {
		return &TestOutcome{Message: "Reminder already sent to this lead", Lead: lead}, nil
	}
	j.metrics.ObserveReminders("sent", 1)
	return &TestOutcome{Sent: true, Message: "Reminder email sent successfully", Lead: lead}, nil
}

func details(lead *leads.Lead) notify.ReminderDetails {
	return notify.ReminderDetails{
		LeadID:    lead.ID.String(),
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Company:   lead.CompanyName(),
		BeeName:   lead.BeeName,
	}
}
