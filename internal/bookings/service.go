package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/leads"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

var bookingsTracer = otel.Tracer("b2bee.internal.bookings")

const manualLeadTime = 24 * time.Hour

// LeadStore is the part of the lead repository reconciliation needs.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*leads.Lead, error)
	FindLatestByEmail(ctx context.Context, email string) (*leads.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status leads.Status) error
}

// Notifier queues the customer's booking confirmation.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, d notify.BookingDetails)
}

// Outcome describes what a webhook event did.
type Outcome string

const (
	OutcomePing      Outcome = "ping"
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeNoLead    Outcome = "no_lead"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeIgnored   Outcome = "ignored"
)

// Service reconciles scheduling-provider events with stored bookings and leads.
type Service struct {
	repo     Repository
	leads    LeadStore
	bees     leads.BeeLookup
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService constructs a bookings service. bees and notifier may be nil.
func NewService(repo Repository, leadStore LeadStore, beeLookup leads.BeeLookup, notifier Notifier, logger *logging.Logger, m *metrics.Metrics) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if leadStore == nil {
		panic("bookings: lead store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		leads:    leadStore,
		bees:     beeLookup,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// HandleEvent applies one Cal.com webhook event. PING is acknowledged before
// the uid is checked; unmatched cancellations and reschedules are no-ops.
func (s *Service) HandleEvent(ctx context.Context, evt WebhookEvent) (Outcome, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.webhook")
	defer span.End()
	trigger := strings.ToUpper(strings.TrimSpace(evt.TriggerEvent))
	span.SetAttributes(attribute.String("calcom.trigger", trigger))

	if trigger == TriggerPing {
		s.metrics.ObserveWebhook(trigger, string(OutcomePing))
		return OutcomePing, nil
	}

	uid := strings.TrimSpace(evt.Payload.UID)
	if uid == "" {
		s.metrics.ObserveWebhook(trigger, "invalid")
		return "", apperr.Invalid("payload.uid", "uid is required")
	}
	span.SetAttributes(attribute.String("calcom.uid", uid))

	var (
		outcome Outcome
		err     error
	)
	start, end := evt.Payload.Times()
	switch trigger {
	case TriggerCreated:
		outcome, err = s.handleCreated(ctx, uid, evt.Payload, start, end)
	case TriggerCancelled:
		outcome, err = s.applyIfKnown(ctx, uid, Update{Status: StatusCancelled})
	case TriggerRescheduled:
		outcome, err = s.applyIfKnown(ctx, uid, Update{Status: StatusRescheduled, StartTime: start, EndTime: end})
	default:
		s.logger.Info("ignoring unknown cal.com trigger", "trigger", evt.TriggerEvent, "uid", uid)
		outcome = OutcomeIgnored
	}
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveWebhook(trigger, "error")
		return "", err
	}
	s.metrics.ObserveWebhook(trigger, string(outcome))
	return outcome, nil
}

func (s *Service) handleCreated(ctx context.Context, uid string, payload WebhookPayload, start, end *time.Time) (Outcome, error) {
	existing, err := s.repo.GetByProviderID(ctx, uid)
	switch {
	case err == nil:
		return s.confirmExisting(ctx, existing, start, end)
	case !errors.Is(err, ErrBookingNotFound):
		return "", fmt.Errorf("bookings: load %s: %w", uid, err)
	}

	email := payload.AttendeeEmail()
	if email == "" {
		s.logger.Warn("cal.com booking has no attendee email", "uid", uid)
		return OutcomeNoLead, nil
	}
	lead, err := s.leads.FindLatestByEmail(ctx, email)
	if errors.Is(err, leads.ErrLeadNotFound) {
		s.logger.Info("no lead for cal.com booking", "uid", uid, "email", email)
		return OutcomeNoLead, nil
	}
	if err != nil {
		return "", fmt.Errorf("bookings: find lead: %w", err)
	}

	booking, created, err := s.repo.Insert(ctx, &NewBooking{
		LeadID:     lead.ID,
		BeeID:      lead.BeeID,
		ProviderID: uid,
		Status:     StatusConfirmed,
		StartTime:  start,
		EndTime:    end,
	})
	if err != nil {
		return "", err
	}
	if !created {
		// Lost the race to a concurrent delivery of the same event.
		return s.confirmExisting(ctx, booking, start, end)
	}
	s.logger.Info("booking created from cal.com", "booking_id", booking.ID, "lead_id", lead.ID, "uid", uid)
	s.notifyConfirmed(ctx, booking, lead)
	return OutcomeCreated, nil
}

func (s *Service) confirmExisting(ctx context.Context, existing *Booking, start, end *time.Time) (Outcome, error) {
	updated, err := s.repo.ApplyUpdate(ctx, existing.ProviderID, Update{Status: StatusConfirmed, StartTime: start, EndTime: end})
	if err != nil {
		return "", err
	}
	lead, err := s.leads.GetByID(ctx, updated.LeadID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		s.logger.Warn("confirmed booking has no lead", "booking_id", updated.ID, "lead_id", updated.LeadID)
		return OutcomeUpdated, nil
	}
	if err != nil {
		return "", fmt.Errorf("bookings: load lead: %w", err)
	}

	// A booking whose lead never left NEW or CONTACTED is completed on replay.
	repaired := false
	if lead.Status == leads.StatusNew || lead.Status == leads.StatusContacted {
		if err := s.leads.UpdateStatus(ctx, lead.ID, leads.StatusBooked); err != nil {
			return "", fmt.Errorf("bookings: mark lead booked: %w", err)
		}
		s.logger.Info("lead marked booked on replay", "booking_id", updated.ID, "lead_id", lead.ID)
		repaired = true
	}
	if existing.Status != StatusConfirmed || repaired {
		s.notifyConfirmed(ctx, updated, lead)
	}
	return OutcomeUpdated, nil
}

func (s *Service) applyIfKnown(ctx context.Context, uid string, u Update) (Outcome, error) {
	_, err := s.repo.ApplyUpdate(ctx, uid, u)
	if errors.Is(err, ErrBookingNotFound) {
		s.logger.Info("cal.com event for unknown booking", "uid", uid, "status", u.Status)
		return OutcomeUnmatched, nil
	}
	if err != nil {
		return "", err
	}
	return OutcomeUpdated, nil
}

// DirectRequest is the body of POST /api/booking.
type DirectRequest struct {
	LeadID     string  `json:"leadId"`
	ProviderID *string `json:"providerId"`
	StartTime  *string `json:"startTime"`
	EndTime    *string `json:"endTime"`
	BeeSlug    *string `json:"beeSlug"`
}

// CreateDirect records a PENDING booking for a known lead; the repository marks the lead BOOKED.
func (s *Service) CreateDirect(ctx context.Context, req DirectRequest) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create_direct")
	defer span.End()

	verr := &apperr.ValidationError{}
	leadID, err := uuid.Parse(strings.TrimSpace(req.LeadID))
	if err != nil {
		verr.Add("leadId", "Lead ID must be a UUID")
	}
	start := parseOptionalTime(verr, "startTime", req.StartTime)
	end := parseOptionalTime(verr, "endTime", req.EndTime)
	if start != nil && end != nil && end.Before(*start) {
		verr.Add("endTime", "End time must not be before start time")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return nil, apperr.NotFound("lead", leadID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: load lead: %w", err)
	}

	beeID := lead.BeeID
	if req.BeeSlug != nil && s.bees != nil {
		if ref, ok, err := s.bees.LookupBySlug(ctx, *req.BeeSlug); err != nil {
			s.logger.Warn("bee lookup failed for booking", "slug", *req.BeeSlug, "error", err)
		} else if ok {
			beeID = &ref.ID
		}
	}

	providerID := "direct_" + uuid.NewString()
	if req.ProviderID != nil && strings.TrimSpace(*req.ProviderID) != "" {
		providerID = strings.TrimSpace(*req.ProviderID)
	}
	span.SetAttributes(attribute.String("booking.provider_id", providerID))

	booking, created, err := s.repo.Insert(ctx, &NewBooking{
		LeadID:     lead.ID,
		BeeID:      beeID,
		ProviderID: providerID,
		Status:     StatusPending,
		StartTime:  start,
		EndTime:    end,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !created {
		return nil, apperr.Conflict("booking", "providerId", providerID)
	}
	s.logger.Info("booking created", "booking_id", booking.ID, "lead_id", lead.ID)
	return booking, nil
}

// ManualResult is the summary returned by the manual booking endpoint.
type ManualResult struct {
	ID        uuid.UUID  `json:"id"`
	LeadID    uuid.UUID  `json:"leadId"`
	LeadName  string     `json:"leadName"`
	BeeName   string     `json:"beeName"`
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"startTime"`
}

// CreateManual books the newest lead for email for tomorrow, as an operator shortcut.
func (s *Service) CreateManual(ctx context.Context, email string) (*ManualResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create_manual")
	defer span.End()

	email = leads.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Invalid("email", "Email is required")
	}
	lead, err := s.leads.FindLatestByEmail(ctx, email)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return nil, &apperr.NotFoundError{Resource: "lead", Key: email, Message: "No lead found with email: " + email}
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: find lead: %w", err)
	}

	now := s.now()
	start := now.Add(manualLeadTime).UTC()
	providerID := "manual_" + strconv.FormatInt(now.UnixMilli(), 10)
	booking, created, err := s.repo.Insert(ctx, &NewBooking{
		LeadID:     lead.ID,
		BeeID:      lead.BeeID,
		ProviderID: providerID,
		Status:     StatusConfirmed,
		StartTime:  &start,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !created {
		return nil, apperr.Conflict("booking", "providerId", providerID)
	}
	s.logger.Info("manual booking created", "booking_id", booking.ID, "lead_id", lead.ID)

	beeName := lead.BeeName
	if beeName == "" {
		beeName = "None"
	}
	return &ManualResult{
		ID:        booking.ID,
		LeadID:    lead.ID,
		LeadName:  lead.FullName(),
		BeeName:   beeName,
		Status:    booking.Status,
		StartTime: booking.StartTime,
	}, nil
}

func (s *Service) notifyConfirmed(ctx context.Context, b *Booking, lead *leads.Lead) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyBookingConfirmed(ctx, notify.BookingDetails{
		BookingID: b.ID.String(),
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Company:   lead.CompanyName(),
		BeeName:   lead.BeeName,
		StartTime: b.StartTime,
	})
}

func parseOptionalTime(verr *apperr.ValidationError, field string, value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*value))
	if err != nil {
		verr.Add(field, "Must be an RFC 3339 date-time")
		return nil
	}
	t = t.UTC()
	return &t
}
