package leads

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

// Status is the lead lifecycle marker. Unknown values read from the store are kept as-is.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusContacted Status = "CONTACTED"
	StatusBooked    Status = "BOOKED"
	StatusConverted Status = "CONVERTED"
	StatusLost      Status = "LOST"
)

// Lead represents a lead submission from the marketing site.
type Lead struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Company        *string    `json:"company"`
	Notes          *string    `json:"notes"`
	BeeID          *uuid.UUID `json:"beeId"`
	BeeName        string     `json:"beeName,omitempty"`
	Status         Status     `json:"status"`
	UTMSource      *string    `json:"utmSource"`
	UTMMedium      *string    `json:"utmMedium"`
	UTMCampaign    *string    `json:"utmCampaign"`
	Referrer       *string    `json:"referrer"`
	ReminderSentAt *time.Time `json:"reminderSentAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CompanyName returns the company or "".
func (l *Lead) CompanyName() string {
	if l.Company == nil {
		return ""
	}
	return *l.Company
}

// CreateLeadRequest represents the body of POST /api/lead.
type CreateLeadRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Company     *string `json:"company"`
	Notes       *string `json:"notes"`
	BeeSlug     *string `json:"beeSlug"`
	UTMSource   *string `json:"utmSource"`
	UTMMedium   *string `json:"utmMedium"`
	UTMCampaign *string `json:"utmCampaign"`
	Referrer    *string `json:"referrer"`
}

// Normalize trims every field and turns blank optionals into nil. The email
// keeps the visitor's casing; lookups compare it case-insensitively.
func (r *CreateLeadRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	for _, field := range []**string{&r.Company, &r.Notes, &r.BeeSlug, &r.UTMSource, &r.UTMMedium, &r.UTMCampaign, &r.Referrer} {
		*field = trimOptional(*field)
	}
}

// Validate reports every violated field, not just the first.
func (r *CreateLeadRequest) Validate() error {
	verr := &apperr.ValidationError{}
	if r.FirstName == "" {
		verr.Add("firstName", "First name is required")
	}
	if r.LastName == "" {
		verr.Add("lastName", "Last name is required")
	}
	if !ValidEmail(r.Email) {
		verr.Add("email", "Invalid email address")
	}
	return verr.OrNil()
}

// NewLead is what the repository persists.
type NewLead struct {
	FirstName   string
	LastName    string
	Email       string
	Company     *string
	Notes       *string
	BeeID       *uuid.UUID
	BeeName     string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	Referrer    *string
	// CreatedAt defaults to now when zero.
	CreatedAt time.Time
}

// CalPrefill is handed to the scheduling widget so the visitor does not retype details.
type CalPrefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// BuildCalPrefill joins company, Bee interest and free-text notes, skipping absent parts.
func BuildCalPrefill(lead *Lead) CalPrefill {
	var parts []string
	if c := lead.CompanyName(); c != "" {
		parts = append(parts, "Company: "+c)
	}
	if lead.BeeName != "" {
		parts = append(parts, "Interested in: "+lead.BeeName)
	}
	if lead.Notes != nil && *lead.Notes != "" {
		parts = append(parts, *lead.Notes)
	}
	return CalPrefill{
		Name:  lead.FullName(),
		Email: lead.Email,
		Notes: strings.Join(parts, "\n"),
	}
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts a bare addr-spec with a dotted domain.
func ValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.HasPrefix(domain, ".")
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
