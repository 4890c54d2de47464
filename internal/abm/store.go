package abm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/database"
)

// ErrPageNotFound is returned when no ABM page matches.
var ErrPageNotFound = errors.New("abm: page not found")

const (
	salesColumns  = `id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, target_market, target_location, mock_companies, mock_leads, mock_analytics, hero_message, benefit_points, is_active, created_at, updated_at`
	marinaColumns = `id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, hero_message, is_active, created_at, updated_at`
)

// Store persists both ABM page families through database/sql.
type Store struct {
	db *sql.DB
}

// NewStore creates an ABM store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("abm: db required")
	}
	return &Store{db: db}
}

func duplicateIdentifier(identifier string) error {
	return &apperr.ConflictError{
		Resource: "abm page",
		Field:    "linkedinIdentifier",
		Value:    identifier,
		Message:  "An ABM page with this LinkedIn identifier already exists",
	}
}

// ListSales returns sales pages newest first.
func (s *Store) ListSales(ctx context.Context) ([]SalesPage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+salesColumns+` FROM abm_pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("abm: list sales pages: %w", err)
	}
	defer rows.Close()

	out := []SalesPage{}
	for rows.Next() {
		p, err := scanSales(rows)
		if err != nil {
			return nil, fmt.Errorf("abm: scan sales page: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetSales loads a sales page by id.
func (s *Store) GetSales(ctx context.Context, id uuid.UUID) (*SalesPage, error) {
	return s.getSales(ctx, s.db, `SELECT `+salesColumns+` FROM abm_pages WHERE id = $1`, id)
}

// GetActiveSales loads a live sales page by its public identifier.
func (s *Store) GetActiveSales(ctx context.Context, identifier string) (*SalesPage, error) {
	return s.getSales(ctx, s.db, `SELECT `+salesColumns+` FROM abm_pages WHERE linkedin_identifier = $1 AND is_active = TRUE`, identifier)
}

// CreateSales inserts a sales page. A taken identifier is a ConflictError.
func (s *Store) CreateSales(ctx context.Context, in SalesInput) (*SalesPage, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO abm_pages (id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, target_market, target_location,
			mock_companies, mock_leads, mock_analytics, hero_message, benefit_points, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING `+salesColumns,
		uuid.New(), in.LinkedinIdentifier, in.LinkedinURL, in.FirstName, in.LastName, in.Title, in.Company,
		in.TargetMarket, in.TargetLocation, *in.MockCompanies, *in.MockLeads, *in.MockAnalytics,
		in.HeroMessage, pq.Array(in.BenefitPoints), *in.IsActive, now)
	p, err := scanSales(row)
	if database.IsUniqueViolation(err) {
		return nil, duplicateIdentifier(in.LinkedinIdentifier)
	}
	if err != nil {
		return nil, fmt.Errorf("abm: create sales page: %w", err)
	}
	return p, nil
}

// UpdateSales applies a partial update under a row lock.
func (s *Store) UpdateSales(ctx context.Context, id uuid.UUID, u SalesUpdate) (*SalesPage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("abm: begin: %w", err)
	}
	defer tx.Rollback()

	p, err := s.getSales(ctx, tx, `SELECT `+salesColumns+` FROM abm_pages WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	if err := u.Apply(p); err != nil {
		return nil, err
	}
	updated, err := scanSales(tx.QueryRowContext(ctx, `
		UPDATE abm_pages SET linkedin_url = $2, first_name = $3, last_name = $4, title = $5, company = $6,
			target_market = $7, target_location = $8, mock_companies = $9, mock_leads = $10, mock_analytics = $11,
			hero_message = $12, benefit_points = $13, is_active = $14, updated_at = $15
		WHERE id = $1
		RETURNING `+salesColumns,
		id, p.LinkedinURL, p.FirstName, p.LastName, p.Title, p.Company, p.TargetMarket, p.TargetLocation,
		p.MockCompanies, p.MockLeads, p.MockAnalytics, p.HeroMessage, pq.Array(p.BenefitPoints), p.IsActive, time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("abm: update sales page: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("abm: commit: %w", err)
	}
	return updated, nil
}

// DeleteSales removes a sales page.
func (s *Store) DeleteSales(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, "abm_pages", id)
}

// ListMarinas returns marina pages newest first.
func (s *Store) ListMarinas(ctx context.Context) ([]MarinaPage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+marinaColumns+` FROM abm_marina_pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("abm: list marina pages: %w", err)
	}
	defer rows.Close()

	out := []MarinaPage{}
	for rows.Next() {
		p, err := scanMarina(rows)
		if err != nil {
			return nil, fmt.Errorf("abm: scan marina page: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetMarina loads a marina page by id.
func (s *Store) GetMarina(ctx context.Context, id uuid.UUID) (*MarinaPage, error) {
	return s.getMarina(ctx, `SELECT `+marinaColumns+` FROM abm_marina_pages WHERE id = $1`, id)
}

// GetActiveMarina loads a live marina page by its public identifier.
func (s *Store) GetActiveMarina(ctx context.Context, identifier string) (*MarinaPage, error) {
	return s.getMarina(ctx, `SELECT `+marinaColumns+` FROM abm_marina_pages WHERE linkedin_identifier = $1 AND is_active = TRUE`, identifier)
}

// CreateMarina inserts a marina page. A taken identifier is a ConflictError.
func (s *Store) CreateMarina(ctx context.Context, in MarinaInput) (*MarinaPage, error) {
	now := time.Now().UTC()
	p, err := scanMarina(s.db.QueryRowContext(ctx, `
		INSERT INTO abm_marina_pages (id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, hero_message, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+marinaColumns,
		uuid.New(), in.LinkedinIdentifier, in.LinkedinURL, in.FirstName, in.LastName, in.Title, in.Company,
		in.HeroMessage, *in.IsActive, now))
	if database.IsUniqueViolation(err) {
		return nil, duplicateIdentifier(in.LinkedinIdentifier)
	}
	if err != nil {
		return nil, fmt.Errorf("abm: create marina page: %w", err)
	}
	return p, nil
}

// UpdateMarina replaces a marina page's fields.
func (s *Store) UpdateMarina(ctx context.Context, id uuid.UUID, in MarinaInput) (*MarinaPage, error) {
	p, err := scanMarina(s.db.QueryRowContext(ctx, `
		UPDATE abm_marina_pages SET linkedin_identifier = $2, linkedin_url = $3, first_name = $4, last_name = $5,
			title = $6, company = $7, hero_message = $8, is_active = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+marinaColumns,
		id, in.LinkedinIdentifier, in.LinkedinURL, in.FirstName, in.LastName, in.Title, in.Company,
		in.HeroMessage, *in.IsActive, time.Now().UTC()))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrPageNotFound
	case database.IsUniqueViolation(err):
		return nil, duplicateIdentifier(in.LinkedinIdentifier)
	case err != nil:
		return nil, fmt.Errorf("abm: update marina page: %w", err)
	}
	return p, nil
}

// DeleteMarina removes a marina page.
func (s *Store) DeleteMarina(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, "abm_marina_pages", id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getSales(ctx context.Context, q queryer, query string, arg any) (*SalesPage, error) {
	p, err := scanSales(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("abm: get sales page: %w", err)
	}
	return p, nil
}

func (s *Store) getMarina(ctx context.Context, query string, arg any) (*MarinaPage, error) {
	p, err := scanMarina(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("abm: get marina page: %w", err)
	}
	return p, nil
}

func (s *Store) delete(ctx context.Context, table string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("abm: delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPageNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSales(row scanner) (*SalesPage, error) {
	var p SalesPage
	if err := row.Scan(&p.ID, &p.LinkedinIdentifier, &p.LinkedinURL, &p.FirstName, &p.LastName, &p.Title,
		&p.Company, &p.TargetMarket, &p.TargetLocation, &p.MockCompanies, &p.MockLeads, &p.MockAnalytics,
		&p.HeroMessage, pq.Array(&p.BenefitPoints), &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.BenefitPoints == nil {
		p.BenefitPoints = []string{}
	}
	return &p, nil
}

func scanMarina(row scanner) (*MarinaPage, error) {
	var p MarinaPage
	if err := row.Scan(&p.ID, &p.LinkedinIdentifier, &p.LinkedinURL, &p.FirstName, &p.LastName, &p.Title,
		&p.Company, &p.HeroMessage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
