package testimonials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrTestimonialNotFound is returned when no row matches the id.
var ErrTestimonialNotFound = errors.New("testimonials: not found")

const selectColumns = `id, author, role, company, quote, rating, bee_id, created_at`

// Store persists testimonials through database/sql.
type Store struct {
	db *sql.DB
}

// NewStore creates a testimonial store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("testimonials: db required")
	}
	return &Store{db: db}
}

// List returns every testimonial, newest first.
func (s *Store) List(ctx context.Context) ([]Testimonial, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("testimonials: list: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// ListForBee returns up to limit testimonials for a Bee, newest first.
func (s *Store) ListForBee(ctx context.Context, beeID uuid.UUID, limit int) ([]Testimonial, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM testimonials
		WHERE bee_id = $1 ORDER BY created_at DESC LIMIT $2`, beeID, limit)
	if err != nil {
		return nil, fmt.Errorf("testimonials: list for bee: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

// Get loads one testimonial.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Testimonial, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM testimonials WHERE id = $1`, id)
	t, err := scanOne(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestimonialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("testimonials: get: %w", err)
	}
	return t, nil
}

// Create inserts a testimonial built from in.
func (s *Store) Create(ctx context.Context, in Input) (*Testimonial, error) {
	t := &Testimonial{
		ID:        uuid.New(),
		Author:    in.Author,
		Role:      in.Role,
		Company:   in.Company,
		Quote:     in.Quote,
		Rating:    in.Rating,
		BeeID:     in.BeeID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO testimonials (id, author, role, company, quote, rating, bee_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Author, t.Role, t.Company, t.Quote, t.Rating, nullUUID(t.BeeID), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("testimonials: create: %w", err)
	}
	return t, nil
}

// Update replaces the editable fields of a testimonial.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in Input) (*Testimonial, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE testimonials SET author = $2, role = $3, company = $4, quote = $5, rating = $6, bee_id = $7
		WHERE id = $1
		RETURNING `+selectColumns,
		id, in.Author, in.Role, in.Company, in.Quote, in.Rating, nullUUID(in.BeeID))
	t, err := scanOne(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestimonialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("testimonials: update: %w", err)
	}
	return t, nil
}

// Delete removes a testimonial.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("testimonials: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (*Testimonial, error) {
	var t Testimonial
	var beeID uuid.NullUUID
	if err := row.Scan(&t.ID, &t.Author, &t.Role, &t.Company, &t.Quote, &t.Rating, &beeID, &t.CreatedAt); err != nil {
		return nil, err
	}
	if beeID.Valid {
		id := beeID.UUID
		t.BeeID = &id
	}
	return &t, nil
}

func scanAll(rows *sql.Rows) ([]Testimonial, error) {
	out := []Testimonial{}
	for rows.Next() {
		t, err := scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("testimonials: scan: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
