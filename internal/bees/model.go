package bees

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/testimonials"
)

const defaultIcon = "🐝"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Bee is a product offering shown on the marketing site.
type Bee struct {
	ID           uuid.UUID                  `json:"id"`
	Slug         string                     `json:"slug"`
	Name         string                     `json:"name"`
	Tagline      string                     `json:"tagline"`
	Description  string                     `json:"description"`
	Icon         string                     `json:"icon"`
	Features     []string                   `json:"features"`
	PriceMonthly *int                       `json:"priceMonthly"`
	IsActive     bool                       `json:"isActive"`
	SortOrder    int                        `json:"sortOrder"`
	CTACalLink   *string                    `json:"ctaCalLink"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
	Testimonials []testimonials.Testimonial `json:"testimonials,omitempty"`
}

// Ref is the slice of a Bee other services copy onto leads and bookings.
type Ref struct {
	ID   uuid.UUID
	Slug string
	Name string
}

// Input is the admin create/update payload. Update replaces every field.
type Input struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	Features     []string `json:"features"`
	PriceMonthly *int     `json:"priceMonthly"`
	IsActive     *bool    `json:"isActive"`
	SortOrder    int      `json:"sortOrder"`
	CTACalLink   *string  `json:"ctaCalLink"`
}

// Normalize trims strings and fills defaults.
func (in *Input) Normalize() {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Name = strings.TrimSpace(in.Name)
	in.Tagline = strings.TrimSpace(in.Tagline)
	in.Description = strings.TrimSpace(in.Description)
	in.Icon = strings.TrimSpace(in.Icon)
	if in.Icon == "" {
		in.Icon = defaultIcon
	}
	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	in.Features = features
	if in.CTACalLink != nil {
		link := strings.TrimSpace(*in.CTACalLink)
		if link == "" {
			in.CTACalLink = nil
		} else {
			in.CTACalLink = &link
		}
	}
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}
}

// Validate reports every invalid field.
func (in *Input) Validate() error {
	verr := &apperr.ValidationError{}
	switch {
	case in.Slug == "":
		verr.Add("slug", "Slug is required")
	case !slugPattern.MatchString(in.Slug):
		verr.Add("slug", "Slug must be lowercase letters, digits and dashes")
	}
	if in.Name == "" {
		verr.Add("name", "Name is required")
	}
	if in.Tagline == "" {
		verr.Add("tagline", "Tagline is required")
	}
	if in.Description == "" {
		verr.Add("description", "Description is required")
	}
	if in.PriceMonthly != nil && *in.PriceMonthly < 0 {
		verr.Add("priceMonthly", "Price must not be negative")
	}
	return verr.OrNil()
}
