package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentseek/b2beelanding/internal/database"
	"github.com/talentseek/b2beelanding/internal/leads"
)

// Repository persists bookings keyed by the scheduling provider's id.
type Repository interface {
	GetByProviderID(ctx context.Context, providerID string) (*Booking, error)
	// Insert adds the booking and moves its lead to BOOKED as one unit. When
	// the provider id is already stored nothing is written and created is false.
	Insert(ctx context.Context, b *NewBooking) (booking *Booking, created bool, err error)
	ApplyUpdate(ctx context.Context, providerID string, u Update) (*Booking, error)
}

const bookingColumns = `id, lead_id, bee_id, provider_id, status, start_time, end_time, created_at, updated_at`

// PostgresRepository stores bookings through pgx.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository creates a repository backed by a pgx pool.
func NewPostgresRepository(db database.DB) *PostgresRepository {
	if db == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetByProviderID loads a booking by provider id.
func (r *PostgresRepository) GetByProviderID(ctx context.Context, providerID string) (*Booking, error) {
	return getByProviderID(ctx, r.db, providerID)
}

func getByProviderID(ctx context.Context, q rowQuerier, providerID string) (*Booking, error) {
	b, err := scanBooking(q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE provider_id = $1`, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: get by provider id: %w", err)
	}
	return b, nil
}

// Insert writes the booking and the lead status in one transaction. The
// UNIQUE provider_id constraint decides races; a conflict returns the stored row.
func (r *PostgresRepository) Insert(ctx context.Context, in *NewBooking) (*Booking, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("bookings: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	b, err := scanBooking(tx.QueryRow(ctx, `
		INSERT INTO bookings (id, lead_id, bee_id, provider_id, status, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (provider_id) DO NOTHING
		RETURNING `+bookingColumns,
		uuid.New(), in.LeadID, in.BeeID, in.ProviderID, string(in.Status), in.StartTime, in.EndTime, now))
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := getByProviderID(ctx, tx, in.ProviderID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bookings: insert: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, in.LeadID, string(leads.StatusBooked)); err != nil {
		return nil, false, fmt.Errorf("bookings: mark lead booked: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("bookings: commit: %w", err)
	}
	return b, true, nil
}

// ApplyUpdate sets the status and, when given, the times.
func (r *PostgresRepository) ApplyUpdate(ctx context.Context, providerID string, u Update) (*Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `
		UPDATE bookings
		SET status = $2, start_time = COALESCE($3, start_time), end_time = COALESCE($4, end_time), updated_at = now()
		WHERE provider_id = $1
		RETURNING `+bookingColumns,
		providerID, string(u.Status), u.StartTime, u.EndTime))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: apply update: %w", err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(&b.ID, &b.LeadID, &b.BeeID, &b.ProviderID, &status, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}

// StatusSetter moves a lead to a new status.
type StatusSetter interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status leads.Status) error
}

// InMemoryRepository is a Repository for tests and local runs.
type InMemoryRepository struct {
	mu         sync.Mutex
	byProvider map[string]*Booking
	leads      StatusSetter
}

// NewInMemoryRepository creates an empty repository. When leadStore is set,
// Insert marks the lead BOOKED first and stores nothing if that fails.
func NewInMemoryRepository(leadStore StatusSetter) *InMemoryRepository {
	return &InMemoryRepository{byProvider: make(map[string]*Booking), leads: leadStore}
}

// GetByProviderID loads a booking by provider id.
func (r *InMemoryRepository) GetByProviderID(ctx context.Context, providerID string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byProvider[providerID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

// Insert mirrors ON CONFLICT (provider_id) DO NOTHING and the transactional lead update.
func (r *InMemoryRepository) Insert(ctx context.Context, in *NewBooking) (*Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byProvider[in.ProviderID]; ok {
		c := *existing
		return &c, false, nil
	}
	if r.leads != nil {
		if err := r.leads.UpdateStatus(ctx, in.LeadID, leads.StatusBooked); err != nil {
			return nil, false, fmt.Errorf("bookings: mark lead booked: %w", err)
		}
	}
	now := time.Now().UTC()
	b := &Booking{
		ID:         uuid.New(),
		LeadID:     in.LeadID,
		BeeID:      in.BeeID,
		ProviderID: in.ProviderID,
		Status:     in.Status,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byProvider[in.ProviderID] = b
	c := *b
	return &c, true, nil
}

// ApplyUpdate sets the status and any provided times.
func (r *InMemoryRepository) ApplyUpdate(ctx context.Context, providerID string, u Update) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byProvider[providerID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = u.Status
	if u.StartTime != nil {
		b.StartTime = u.StartTime
	}
	if u.EndTime != nil {
		b.EndTime = u.EndTime
	}
	b.UpdatedAt = time.Now().UTC()
	c := *b
	return &c, nil
}

// Len reports how many bookings are stored.
func (r *InMemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byProvider)
}
