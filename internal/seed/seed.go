// Package seed loads the demo catalogue into an empty or existing database.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"github.com/talentseek/b2beelanding/internal/abm"
	"github.com/talentseek/b2beelanding/internal/boatfund"
	"github.com/talentseek/b2beelanding/internal/testimonials"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

//go:embed seed.yaml
var defaultData []byte

// Data is the decoded seed file.
type Data struct {
	Bees          []BeeSeed          `yaml:"bees"`
	Testimonials  []TestimonialSeed  `yaml:"testimonials"`
	SalesPages    []SalesPageSeed    `yaml:"salesPages"`
	MarinaPages   []MarinaPageSeed   `yaml:"marinaPages"`
	Contributions []ContributionSeed `yaml:"contributions"`
}

type BeeSeed struct {
	Slug         string   `yaml:"slug"`
	Name         string   `yaml:"name"`
	Tagline      string   `yaml:"tagline"`
	Description  string   `yaml:"description"`
	Icon         string   `yaml:"icon"`
	Features     []string `yaml:"features"`
	PriceMonthly *int     `yaml:"priceMonthly"`
	SortOrder    int      `yaml:"sortOrder"`
}

type TestimonialSeed struct {
	Author  string  `yaml:"author"`
	Role    *string `yaml:"role"`
	Company *string `yaml:"company"`
	Quote   string  `yaml:"quote"`
	Rating  *int    `yaml:"rating"`
	Bee     string  `yaml:"bee"`
}

type SalesPageSeed struct {
	LinkedinIdentifier string   `yaml:"linkedinIdentifier"`
	LinkedinURL        string   `yaml:"linkedinUrl"`
	FirstName          string   `yaml:"firstName"`
	LastName           string   `yaml:"lastName"`
	Title              *string  `yaml:"title"`
	Company            string   `yaml:"company"`
	TargetMarket       string   `yaml:"targetMarket"`
	TargetLocation     string   `yaml:"targetLocation"`
	MockCompanies      any      `yaml:"mockCompanies"`
	MockLeads          any      `yaml:"mockLeads"`
	MockAnalytics      any      `yaml:"mockAnalytics"`
	HeroMessage        *string  `yaml:"heroMessage"`
	BenefitPoints      []string `yaml:"benefitPoints"`
}

type MarinaPageSeed struct {
	LinkedinIdentifier string  `yaml:"linkedinIdentifier"`
	LinkedinURL        string  `yaml:"linkedinUrl"`
	FirstName          string  `yaml:"firstName"`
	LastName           string  `yaml:"lastName"`
	Title              *string `yaml:"title"`
	Company            string  `yaml:"company"`
	HeroMessage        *string `yaml:"heroMessage"`
}

type ContributionSeed struct {
	Amount      int    `yaml:"amount"`
	Description string `yaml:"description"`
}

// Parse decodes a seed file.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	return &d, nil
}

// Default returns the embedded demo data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Report counts what a run wrote.
type Report struct {
	Bees          int
	Testimonials  int
	SalesPages    int
	MarinaPages   int
	Contributions int
}

// Seeder writes Data into Postgres. Bees and ABM pages are upserted;
// testimonials and contributions are only inserted into empty tables.
type Seeder struct {
	db       *sql.DB
	calLink  string
	logger   *logging.Logger
	quotes   *testimonials.Store
	boatFund *boatfund.Store
}

// New creates a Seeder. calLink becomes every Bee's CTA link when non-empty.
func New(db *sql.DB, calLink string, logger *logging.Logger) *Seeder {
	if db == nil {
		panic("seed: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Seeder{
		db:       db,
		calLink:  calLink,
		logger:   logger,
		quotes:   testimonials.NewStore(db),
		boatFund: boatfund.NewStore(db),
	}
}

// Run applies d.
func (s *Seeder) Run(ctx context.Context, d *Data) (*Report, error) {
	report := &Report{}

	beeIDs := make(map[string]uuid.UUID, len(d.Bees))
	for _, b := range d.Bees {
		id, err := s.upsertBee(ctx, b)
		if err != nil {
			return report, err
		}
		beeIDs[b.Slug] = id
		report.Bees++
	}
	s.logger.Info("seeded bees", "count", report.Bees)

	var quoteCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM testimonials`).Scan(&quoteCount); err != nil {
		return report, fmt.Errorf("seed: count testimonials: %w", err)
	}
	if quoteCount == 0 {
		for _, t := range d.Testimonials {
			in := testimonials.Input{Author: t.Author, Role: t.Role, Company: t.Company, Quote: t.Quote, Rating: t.Rating}
			if id, ok := beeIDs[t.Bee]; ok {
				in.BeeID = &id
			}
			in.Normalize()
			if _, err := s.quotes.Create(ctx, in); err != nil {
				return report, fmt.Errorf("seed: testimonial %q: %w", t.Author, err)
			}
			report.Testimonials++
		}
		s.logger.Info("seeded testimonials", "count", report.Testimonials)
	} else {
		s.logger.Info("testimonials already present; skipping", "existing", quoteCount)
	}

	for _, p := range d.SalesPages {
		if err := s.upsertSalesPage(ctx, p); err != nil {
			return report, err
		}
		report.SalesPages++
	}
	for _, p := range d.MarinaPages {
		if err := s.upsertMarinaPage(ctx, p); err != nil {
			return report, err
		}
		report.MarinaPages++
	}
	s.logger.Info("seeded abm pages", "sales", report.SalesPages, "marina", report.MarinaPages)

	existing, err := s.boatFund.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("seed: %w", err)
	}
	if existing == 0 {
		for _, c := range d.Contributions {
			if _, err := s.boatFund.Create(ctx, c.Amount, c.Description); err != nil {
				return report, fmt.Errorf("seed: %w", err)
			}
			report.Contributions++
		}
		s.logger.Info("seeded boat fund", "count", report.Contributions)
	}

	return report, nil
}

func (s *Seeder) upsertBee(ctx context.Context, b BeeSeed) (uuid.UUID, error) {
	var calLink *string
	if s.calLink != "" {
		calLink = &s.calLink
	}
	features := b.Features
	if features == nil {
		features = []string{}
	}
	now := time.Now().UTC()

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bees (id, slug, name, tagline, description, icon, features, price_monthly, is_active, sort_order, cta_cal_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10, $11, $11)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, tagline = EXCLUDED.tagline, description = EXCLUDED.description,
			icon = EXCLUDED.icon, features = EXCLUDED.features, price_monthly = EXCLUDED.price_monthly,
			is_active = TRUE, sort_order = EXCLUDED.sort_order, cta_cal_link = EXCLUDED.cta_cal_link,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), b.Slug, b.Name, b.Tagline, b.Description, b.Icon, pq.Array(features),
		b.PriceMonthly, b.SortOrder, calLink, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed: bee %q: %w", b.Slug, err)
	}
	return id, nil
}

func (s *Seeder) upsertSalesPage(ctx context.Context, p SalesPageSeed) error {
	in := abm.SalesInput{
		LinkedinIdentifier: p.LinkedinIdentifier,
		LinkedinURL:        p.LinkedinURL,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Title:              p.Title,
		Company:            p.Company,
		TargetMarket:       p.TargetMarket,
		TargetLocation:     p.TargetLocation,
		HeroMessage:        p.HeroMessage,
		BenefitPoints:      p.BenefitPoints,
	}
	for _, blob := range []struct {
		raw any
		dst **abm.Value
	}{
		{p.MockCompanies, &in.MockCompanies},
		{p.MockLeads, &in.MockLeads},
		{p.MockAnalytics, &in.MockAnalytics},
	} {
		if blob.raw == nil {
			continue
		}
		v, err := abm.FromAny(blob.raw)
		if err != nil {
			return fmt.Errorf("seed: sales page %q: %w", p.LinkedinIdentifier, err)
		}
		*blob.dst = &v
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("seed: sales page %q: %w", p.LinkedinIdentifier, err)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO abm_pages (id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, target_market, target_location,
			mock_companies, mock_leads, mock_analytics, hero_message, benefit_points, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE, $15, $15)
		ON CONFLICT (linkedin_identifier) DO UPDATE SET
			linkedin_url = EXCLUDED.linkedin_url, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			title = EXCLUDED.title, company = EXCLUDED.company, target_market = EXCLUDED.target_market,
			target_location = EXCLUDED.target_location, mock_companies = EXCLUDED.mock_companies,
			mock_leads = EXCLUDED.mock_leads, mock_analytics = EXCLUDED.mock_analytics,
			hero_message = EXCLUDED.hero_message, benefit_points = EXCLUDED.benefit_points,
			is_active = TRUE, updated_at = EXCLUDED.updated_at`,
		uuid.New(), in.LinkedinIdentifier, in.LinkedinURL, in.FirstName, in.LastName, in.Title, in.Company,
		in.TargetMarket, in.TargetLocation, *in.MockCompanies, *in.MockLeads, *in.MockAnalytics,
		in.HeroMessage, pq.Array(in.BenefitPoints), now)
	if err != nil {
		return fmt.Errorf("seed: sales page %q: %w", in.LinkedinIdentifier, err)
	}
	return nil
}

func (s *Seeder) upsertMarinaPage(ctx context.Context, p MarinaPageSeed) error {
	in := abm.MarinaInput{
		LinkedinIdentifier: p.LinkedinIdentifier,
		LinkedinURL:        p.LinkedinURL,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Title:              p.Title,
		Company:            p.Company,
		HeroMessage:        p.HeroMessage,
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("seed: marina page %q: %w", p.LinkedinIdentifier, err)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO abm_marina_pages (id, linkedin_identifier, linkedin_url, first_name, last_name, title, company, hero_message, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $9)
		ON CONFLICT (linkedin_identifier) DO UPDATE SET
			linkedin_url = EXCLUDED.linkedin_url, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			title = EXCLUDED.title, company = EXCLUDED.company, hero_message = EXCLUDED.hero_message,
			is_active = TRUE, updated_at = EXCLUDED.updated_at`,
		uuid.New(), in.LinkedinIdentifier, in.LinkedinURL, in.FirstName, in.LastName, in.Title, in.Company,
		in.HeroMessage, now)
	if err != nil {
		return fmt.Errorf("seed: marina page %q: %w", in.LinkedinIdentifier, err)
	}
	return nil
}
