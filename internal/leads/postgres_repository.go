package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentseek/b2beelanding/internal/database"
)

const leadColumns = `l.id, l.first_name, l.last_name, l.email, l.company, l.notes, l.bee_id, COALESCE(b.name, ''),
	l.status, l.utm_source, l.utm_medium, l.utm_campaign, l.referrer, l.reminder_sent_at, l.created_at, l.updated_at`

const leadFrom = ` FROM leads l LEFT JOIN bees b ON b.id = l.bee_id`

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or pgxmock).
func NewPostgresRepository(db database.DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row with status NEW.
func (r *PostgresRepository) Create(ctx context.Context, in *NewLead) (*Lead, error) {
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now()
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

	_, err := r.db.Exec(ctx, `
		INSERT INTO leads (id, first_name, last_name, email, company, notes, bee_id, status,
			utm_source, utm_medium, utm_campaign, referrer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Company, lead.Notes, lead.BeeID,
		string(lead.Status), lead.UTMSource, lead.UTMMedium, lead.UTMCampaign, lead.Referrer, lead.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// GetByID fetches a lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+leadFrom+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leads: get: %w", err)
	}
	return lead, nil
}

// FindLatestByEmail returns the newest lead for email.
func (r *PostgresRepository) FindLatestByEmail(ctx context.Context, email string) (*Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+leadFrom+`
		WHERE lower(l.email) = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT 1`, NormalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leads: find by email: %w", err)
	}
	return lead, nil
}

// UpdateStatus sets the lead status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("leads: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ListReminderCandidates returns stale NEW leads that were never reminded, oldest first.
func (r *PostgresRepository) ListReminderCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*Lead, error) {
	rows, err := r.db.Query(ctx, `SELECT `+leadColumns+leadFrom+`
		WHERE l.status = 'NEW' AND l.reminder_sent_at IS NULL AND l.created_at <= $1
		ORDER BY l.created_at ASC, l.id ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("leads: list reminder candidates: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

// MarkReminderSent sets reminder_sent_at when it is still NULL.
func (r *PostgresRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE leads SET reminder_sent_at = $2, updated_at = $2
		WHERE id = $1 AND reminder_sent_at IS NULL`, id, at.UTC())
	if err != nil {
		return false, fmt.Errorf("leads: mark reminder sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns leads newest first, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + leadFrom
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE l.status = $1`
	}
	args = append(args, filter.Limit, filter.Offset)
	query += ` ORDER BY l.created_at DESC, l.id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	var status string
	if err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Company,
		&lead.Notes,
		&lead.BeeID,
		&lead.BeeName,
		&status,
		&lead.UTMSource,
		&lead.UTMMedium,
		&lead.UTMCampaign,
		&lead.Referrer,
		&lead.ReminderSentAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lead.Status = Status(status)
	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]*Lead, error) {
	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}
