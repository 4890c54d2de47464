package leads

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentseek/b2beelanding/internal/bees"
	"github.com/talentseek/b2beelanding/internal/notify"
	"github.com/talentseek/b2beelanding/internal/observability/metrics"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

var intakeTracer = otel.Tracer("b2bee.internal.leads")

// BeeLookup resolves a product slug. A miss is (nil, false, nil).
type BeeLookup interface {
	LookupBySlug(ctx context.Context, slug string) (*bees.Ref, bool, error)
}

// Notifier receives the "new lead" alert. Implementations must not block on delivery.
type Notifier interface {
	NotifyNewLead(ctx context.Context, d notify.LeadDetails)
}

// SubmitResult is what the intake endpoint returns.
type SubmitResult struct {
	Lead       *Lead
	CalPrefill CalPrefill
}

// Service validates and records lead submissions.
type Service struct {
	repo     Repository
	bees     BeeLookup
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewService wires the intake service. bees and notifier may be nil.
func NewService(repo Repository, beeLookup BeeLookup, notifier Notifier, logger *logging.Logger, m *metrics.Metrics) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, bees: beeLookup, notifier: notifier, logger: logger, metrics: m}
}

// Submit validates req, resolves the optional Bee slug, stores the lead and
// queues the operations notification.
func (s *Service) Submit(ctx context.Context, req CreateLeadRequest) (*SubmitResult, error) {
	ctx, span := intakeTracer.Start(ctx, "leads.submit")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.ObserveLead("invalid")
		return nil, err
	}

	in := &NewLead{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Company:     req.Company,
		Notes:       req.Notes,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		Referrer:    req.Referrer,
	}
	if ref, ok := s.resolveBee(ctx, req.BeeSlug); ok {
		in.BeeID = &ref.ID
		in.BeeName = ref.Name
		span.SetAttributes(attribute.String("bee.slug", ref.Slug))
	}

	lead, err := s.repo.Create(ctx, in)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveLead("error")
		return nil, fmt.Errorf("leads: submit: %w", err)
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID.String()))
	s.metrics.ObserveLead("created")
	s.logger.Info("lead created", "lead_id", lead.ID, "bee", lead.BeeName)

	if s.notifier != nil {
		s.notifier.NotifyNewLead(ctx, notify.LeadDetails{
			ID:        lead.ID.String(),
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Email:     lead.Email,
			Company:   lead.CompanyName(),
			Notes:     deref(lead.Notes),
			BeeName:   lead.BeeName,
			CreatedAt: lead.CreatedAt,
		})
	}

	return &SubmitResult{Lead: lead, CalPrefill: BuildCalPrefill(lead)}, nil
}

// List returns leads for the admin listing.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) resolveBee(ctx context.Context, slug *string) (*bees.Ref, bool) {
	if slug == nil || s.bees == nil {
		return nil, false
	}
	ref, ok, err := s.bees.LookupBySlug(ctx, *slug)
	if err != nil {
		s.logger.Warn("bee lookup failed; storing lead without bee", "slug", *slug, "error", err)
		return nil, false
	}
	if !ok {
		s.logger.Debug("unknown bee slug", "slug", *slug)
		return nil, false
	}
	return ref, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
