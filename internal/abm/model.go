package abm

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

var linkedinProfile = regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)

// IdentifierFromURL extracts the profile slug from a LinkedIn profile URL.
func IdentifierFromURL(raw string) (string, bool) {
	m := linkedinProfile.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	id, err := url.PathUnescape(m[1])
	if err != nil || strings.TrimSpace(id) == "" {
		return "", false
	}
	return strings.TrimSpace(id), true
}

// SalesPage is a personalised Sales Bee landing page for one prospect.
type SalesPage struct {
	ID                 uuid.UUID `json:"id"`
	LinkedinIdentifier string    `json:"linkedinIdentifier"`
	LinkedinURL        string    `json:"linkedinUrl"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Title              *string   `json:"title"`
	Company            string    `json:"company"`
	TargetMarket       string    `json:"targetMarket"`
	TargetLocation     string    `json:"targetLocation"`
	MockCompanies      Value     `json:"mockCompanies"`
	MockLeads          Value     `json:"mockLeads"`
	MockAnalytics      Value     `json:"mockAnalytics"`
	HeroMessage        *string   `json:"heroMessage"`
	BenefitPoints      []string  `json:"benefitPoints"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SalesInput is the create payload. An empty identifier is derived from the URL.
type SalesInput struct {
	LinkedinIdentifier string   `json:"linkedinIdentifier"`
	LinkedinURL        string   `json:"linkedinUrl"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	Title              *string  `json:"title"`
	Company            string   `json:"company"`
	TargetMarket       string   `json:"targetMarket"`
	TargetLocation     string   `json:"targetLocation"`
	MockCompanies      *Value   `json:"mockCompanies"`
	MockLeads          *Value   `json:"mockLeads"`
	MockAnalytics      *Value   `json:"mockAnalytics"`
	HeroMessage        *string  `json:"heroMessage"`
	BenefitPoints      []string `json:"benefitPoints"`
	IsActive           *bool    `json:"isActive"`
}

// Normalize trims fields, derives the identifier and fills blob defaults.
func (in *SalesInput) Normalize() {
	in.LinkedinIdentifier = strings.TrimSpace(in.LinkedinIdentifier)
	in.LinkedinURL = strings.TrimSpace(in.LinkedinURL)
	if in.LinkedinIdentifier == "" {
		if id, ok := IdentifierFromURL(in.LinkedinURL); ok {
			in.LinkedinIdentifier = id
		}
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Company = strings.TrimSpace(in.Company)
	in.TargetMarket = strings.TrimSpace(in.TargetMarket)
	in.TargetLocation = strings.TrimSpace(in.TargetLocation)
	in.Title = trimOptional(in.Title)
	in.HeroMessage = trimOptional(in.HeroMessage)
	in.BenefitPoints = trimList(in.BenefitPoints)
	defaultValue(&in.MockCompanies, List())
	defaultValue(&in.MockLeads, List())
	defaultValue(&in.MockAnalytics, Object(map[string]Value{
		"replies": Number(0), "meetings": Number(0), "openRate": Number(0), "replyRate": Number(0),
	}))
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}
}

// Validate reports every invalid field.
func (in *SalesInput) Validate() error {
	verr := &apperr.ValidationError{}
	if in.LinkedinIdentifier == "" {
		verr.Add("linkedinIdentifier", "LinkedIn identifier is required")
	}
	if !validURL(in.LinkedinURL) {
		verr.Add("linkedinUrl", "LinkedIn URL must be a valid URL")
	}
	required(verr, "firstName", "First name", in.FirstName)
	required(verr, "lastName", "Last name", in.LastName)
	required(verr, "company", "Company", in.Company)
	required(verr, "targetMarket", "Target market", in.TargetMarket)
	required(verr, "targetLocation", "Target location", in.TargetLocation)
	validateMocks(verr, in.MockCompanies, in.MockLeads, in.MockAnalytics)
	return verr.OrNil()
}

// SalesUpdate is a partial update; nil fields are left alone. The identifier
// is accepted only when it matches the stored one.
type SalesUpdate struct {
	LinkedinIdentifier *string   `json:"linkedinIdentifier"`
	LinkedinURL        *string   `json:"linkedinUrl"`
	FirstName          *string   `json:"firstName"`
	LastName           *string   `json:"lastName"`
	Title              *string   `json:"title"`
	Company            *string   `json:"company"`
	TargetMarket       *string   `json:"targetMarket"`
	TargetLocation     *string   `json:"targetLocation"`
	MockCompanies      *Value    `json:"mockCompanies"`
	MockLeads          *Value    `json:"mockLeads"`
	MockAnalytics      *Value    `json:"mockAnalytics"`
	HeroMessage        *string   `json:"heroMessage"`
	BenefitPoints      *[]string `json:"benefitPoints"`
	IsActive           *bool     `json:"isActive"`
}

// Validate checks the fields that are present.
func (u *SalesUpdate) Validate() error {
	verr := &apperr.ValidationError{}
	if u.LinkedinURL != nil && !validURL(strings.TrimSpace(*u.LinkedinURL)) {
		verr.Add("linkedinUrl", "LinkedIn URL must be a valid URL")
	}
	for _, f := range []struct {
		field, label string
		value        *string
	}{
		{"firstName", "First name", u.FirstName},
		{"lastName", "Last name", u.LastName},
		{"company", "Company", u.Company},
		{"targetMarket", "Target market", u.TargetMarket},
		{"targetLocation", "Target location", u.TargetLocation},
	} {
		if f.value != nil {
			required(verr, f.field, f.label, strings.TrimSpace(*f.value))
		}
	}
	validateMocks(verr, u.MockCompanies, u.MockLeads, u.MockAnalytics)
	return verr.OrNil()
}

// Apply merges u into p. The identifier never changes.
func (u *SalesUpdate) Apply(p *SalesPage) error {
	if u.LinkedinIdentifier != nil && strings.TrimSpace(*u.LinkedinIdentifier) != p.LinkedinIdentifier {
		return apperr.Invalid("linkedinIdentifier", "LinkedIn identifier cannot be changed")
	}
	setString(&p.LinkedinURL, u.LinkedinURL)
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	setString(&p.Company, u.Company)
	setString(&p.TargetMarket, u.TargetMarket)
	setString(&p.TargetLocation, u.TargetLocation)
	if u.Title != nil {
		p.Title = trimOptional(u.Title)
	}
	if u.HeroMessage != nil {
		p.HeroMessage = trimOptional(u.HeroMessage)
	}
	if u.MockCompanies != nil {
		p.MockCompanies = *u.MockCompanies
	}
	if u.MockLeads != nil {
		p.MockLeads = *u.MockLeads
	}
	if u.MockAnalytics != nil {
		p.MockAnalytics = *u.MockAnalytics
	}
	if u.BenefitPoints != nil {
		p.BenefitPoints = trimList(*u.BenefitPoints)
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	return nil
}

// MarinaPage is a personalised Smart Marina landing page.
type MarinaPage struct {
	ID                 uuid.UUID `json:"id"`
	LinkedinIdentifier string    `json:"linkedinIdentifier"`
	LinkedinURL        string    `json:"linkedinUrl"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Title              *string   `json:"title"`
	Company            string    `json:"company"`
	HeroMessage        *string   `json:"heroMessage"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// MarinaInput is the create and update payload; update replaces every field.
type MarinaInput struct {
	LinkedinIdentifier string  `json:"linkedinIdentifier"`
	LinkedinURL        string  `json:"linkedinUrl"`
	FirstName          string  `json:"firstName"`
	LastName           string  `json:"lastName"`
	Title              *string `json:"title"`
	Company            string  `json:"company"`
	HeroMessage        *string `json:"heroMessage"`
	IsActive           *bool   `json:"isActive"`
}

// Normalize trims fields, derives a missing identifier and defaults isActive to true.
func (in *MarinaInput) Normalize() {
	in.LinkedinIdentifier = strings.TrimSpace(in.LinkedinIdentifier)
	in.LinkedinURL = strings.TrimSpace(in.LinkedinURL)
	if in.LinkedinIdentifier == "" {
		if id, ok := IdentifierFromURL(in.LinkedinURL); ok {
			in.LinkedinIdentifier = id
		}
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Company = strings.TrimSpace(in.Company)
	in.Title = trimOptional(in.Title)
	in.HeroMessage = trimOptional(in.HeroMessage)
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}
}

// Validate reports every missing required field.
func (in *MarinaInput) Validate() error {
	verr := &apperr.ValidationError{}
	required(verr, "linkedinIdentifier", "LinkedIn identifier", in.LinkedinIdentifier)
	required(verr, "linkedinUrl", "LinkedIn URL", in.LinkedinURL)
	required(verr, "firstName", "First name", in.FirstName)
	required(verr, "lastName", "Last name", in.LastName)
	required(verr, "company", "Company", in.Company)
	return verr.OrNil()
}

func required(verr *apperr.ValidationError, field, label, value string) {
	if value == "" {
		verr.Add(field, label+" is required")
	}
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func defaultValue(dst **Value, def Value) {
	if *dst == nil || (*dst).IsNull() {
		*dst = &def
	}
}
