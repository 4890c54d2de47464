package boatfund

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists contributions through database/sql.
type Store struct {
	db *sql.DB
}

// NewStore creates a boat fund store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("boatfund: db required")
	}
	return &Store{db: db}
}

// Summary returns the latest contributions and the all-time total.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	out := &Summary{Contributions: []Contribution{}}

	rows, err := s.db.QueryContext(ctx, `SELECT id, amount, description, created_at
		FROM boat_fund_contributions ORDER BY created_at DESC LIMIT $1`, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("boatfund: list: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.ID, &c.Amount, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("boatfund: scan: %w", err)
		}
		out.Contributions = append(out.Contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boatfund: list: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM boat_fund_contributions`,
	).Scan(&out.Total); err != nil {
		return nil, fmt.Errorf("boatfund: total: %w", err)
	}
	return out, nil
}

// Create records a contribution.
func (s *Store) Create(ctx context.Context, amount int, description string) (*Contribution, error) {
	c := &Contribution{
		ID:          uuid.New(),
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO boat_fund_contributions (id, amount, description, created_at)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.Amount, c.Description, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("boatfund: create: %w", err)
	}
	return c, nil
}

// Count reports how many contributions exist.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boat_fund_contributions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("boatfund: count: %w", err)
	}
	return n, nil
}
