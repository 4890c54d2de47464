package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows the admin lead listing.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *NewLead) (*Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	// FindLatestByEmail returns the most recently created lead for an address.
	FindLatestByEmail(ctx context.Context, email string) (*Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// ListReminderCandidates returns NEW, never-reminded leads created at or
	// before cutoff, oldest first.
	ListReminderCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*Lead, error)
	// MarkReminderSent sets reminder_sent_at only if it is still unset and
	// reports whether this call set it.
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
}

// InMemoryRepository is a Repository backed by a map, used by tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[uuid.UUID]*Lead
	seq   map[uuid.UUID]int
	next  int
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[uuid.UUID]*Lead),
		seq:   make(map[uuid.UUID]int),
	}
}

// Create stores a new lead with status NEW.
func (r *InMemoryRepository) Create(ctx context.Context, in *NewLead) (*Lead, error) {
	now := time.Now().UTC()
	created := in.CreatedAt
	if created.IsZero() {
		created = now
	}
	lead := &Lead{
		ID:          uuid.New(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Company:     in.Company,
		Notes:       in.Notes,
		BeeID:       in.BeeID,
		BeeName:     in.BeeName,
		Status:      StatusNew,
		UTMSource:   in.UTMSource,
		UTMMedium:   in.UTMMedium,
		UTMCampaign: in.UTMCampaign,
		Referrer:    in.Referrer,
		CreatedAt:   created.UTC(),
		UpdatedAt:   created.UTC(),
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.next++
	r.seq[lead.ID] = r.next
	r.mu.Unlock()

	return copyLead(lead), nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return copyLead(lead), nil
}

// FindLatestByEmail returns the newest lead for email.
func (r *InMemoryRepository) FindLatestByEmail(ctx context.Context, email string) (*Lead, error) {
	email = NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Lead
	for _, lead := range r.leads {
		if NormalizeEmail(lead.Email) == email {
			matches = append(matches, lead)
		}
	}
	if len(matches) == 0 {
		return nil, ErrLeadNotFound
	}
	r.sortNewestFirst(matches)
	return copyLead(matches[0]), nil
}

// UpdateStatus sets the lead status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now().UTC()
	return nil
}

// ListReminderCandidates applies the reminder selection predicate.
func (r *InMemoryRepository) ListReminderCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Lead
	for _, lead := range r.leads {
		if lead.Status == StatusNew && lead.ReminderSentAt == nil && !lead.CreatedAt.After(cutoff) {
			out = append(out, lead)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i] = copyLead(out[i])
	}
	return out, nil
}

// MarkReminderSent sets the marker once.
func (r *InMemoryRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok || lead.ReminderSentAt != nil {
		return false, nil
	}
	ts := at.UTC()
	lead.ReminderSentAt = &ts
	lead.UpdatedAt = ts
	return true, nil
}

// List returns leads newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Lead
	for _, lead := range r.leads {
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		all = append(all, lead)
	}
	r.sortNewestFirst(all)

	out := []*Lead{}
	for i := filter.Offset; i < len(all); i++ {
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, copyLead(all[i]))
	}
	return out, nil
}

func (r *InMemoryRepository) sortNewestFirst(leads []*Lead) {
	sort.Slice(leads, func(i, j int) bool {
		if !leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		}
		return r.seq[leads[i].ID] > r.seq[leads[j].ID]
	})
}

func copyLead(l *Lead) *Lead {
	c := *l
	return &c
}
