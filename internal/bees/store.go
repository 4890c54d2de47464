package bees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/database"
)

// ErrBeeNotFound is returned when no row matches.
var ErrBeeNotFound = errors.New("bees: not found")

const selectColumns = `id, slug, name, tagline, description, icon, features, price_monthly, is_active, sort_order, cta_cal_link, created_at, updated_at`

// Store persists Bees through database/sql.
type Store struct {
	db *sql.DB
}

// NewStore creates a Bee store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("bees: db required")
	}
	return &Store{db: db}
}

// List returns Bees ordered for display. activeOnly hides retired products.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]Bee, error) {
	query := `SELECT ` + selectColumns + ` FROM bees`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("bees: list: %w", err)
	}
	defer rows.Close()

	out := []Bee{}
	for rows.Next() {
		b, err := scanBee(rows)
		if err != nil {
			return nil, fmt.Errorf("bees: scan: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Get loads a Bee by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Bee, error) {
	return s.getOne(ctx, "get", `SELECT `+selectColumns+` FROM bees WHERE id = $1`, id)
}

// GetActiveBySlug loads a live Bee for the public product page.
func (s *Store) GetActiveBySlug(ctx context.Context, slug string) (*Bee, error) {
	return s.getOne(ctx, "get by slug", `SELECT `+selectColumns+` FROM bees WHERE slug = $1 AND is_active = TRUE`, slug)
}

// LookupBySlug resolves a slug regardless of is_active. A miss is (nil, false, nil).
func (s *Store) LookupBySlug(ctx context.Context, slug string) (*Ref, bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, false, nil
	}
	var ref Ref
	err := s.db.QueryRowContext(ctx, `SELECT id, slug, name FROM bees WHERE slug = $1`, slug).
		Scan(&ref.ID, &ref.Slug, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("bees: lookup slug: %w", err)
	}
	return &ref, true, nil
}

// Create inserts a Bee. A duplicate slug is a ConflictError.
func (s *Store) Create(ctx context.Context, in Input) (*Bee, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO bees (id, slug, name, tagline, description, icon, features, price_monthly, is_active, sort_order, cta_cal_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING `+selectColumns,
		uuid.New(), in.Slug, in.Name, in.Tagline, in.Description, in.Icon, pq.Array(in.Features),
		in.PriceMonthly, *in.IsActive, in.SortOrder, in.CTACalLink, now)
	b, err := scanBee(row)
	if database.IsUniqueViolation(err) {
		return nil, apperr.Conflict("bee", "slug", in.Slug)
	}
	if err != nil {
		return nil, fmt.Errorf("bees: create: %w", err)
	}
	return b, nil
}

// Update replaces a Bee's editable fields.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in Input) (*Bee, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE bees SET slug = $2, name = $3, tagline = $4, description = $5, icon = $6, features = $7,
			price_monthly = $8, is_active = $9, sort_order = $10, cta_cal_link = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+selectColumns,
		id, in.Slug, in.Name, in.Tagline, in.Description, in.Icon, pq.Array(in.Features),
		in.PriceMonthly, *in.IsActive, in.SortOrder, in.CTACalLink, time.Now().UTC())
	b, err := scanBee(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrBeeNotFound
	case database.IsUniqueViolation(err):
		return nil, apperr.Conflict("bee", "slug", in.Slug)
	case err != nil:
		return nil, fmt.Errorf("bees: update: %w", err)
	}
	return b, nil
}

// Delete removes a Bee; leads, bookings and testimonials keep a NULL bee_id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bees: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBeeNotFound
	}
	return nil
}

// ActiveSlugs lists live slugs with their last update, for the sitemap.
func (s *Store) ActiveSlugs(ctx context.Context) ([]SlugStamp, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, updated_at FROM bees WHERE is_active = TRUE ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("bees: active slugs: %w", err)
	}
	defer rows.Close()

	var out []SlugStamp
	for rows.Next() {
		var st SlugStamp
		if err := rows.Scan(&st.Slug, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bees: scan slug: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) getOne(ctx context.Context, op, query string, arg any) (*Bee, error) {
	b, err := scanBee(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bees: %s: %w", op, err)
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBee(row scanner) (*Bee, error) {
	var b Bee
	if err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.Tagline, &b.Description, &b.Icon,
		pq.Array(&b.Features), &b.PriceMonthly, &b.IsActive, &b.SortOrder, &b.CTACalLink,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if b.Features == nil {
		b.Features = []string{}
	}
	return &b, nil
}
