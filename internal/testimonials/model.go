package testimonials

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

// Testimonial is a customer quote, optionally attached to a Bee.
type Testimonial struct {
	ID        uuid.UUID  `json:"id"`
	Author    string     `json:"author"`
	Role      *string    `json:"role"`
	Company   *string    `json:"company"`
	Quote     string     `json:"quote"`
	Rating    *int       `json:"rating"`
	BeeID     *uuid.UUID `json:"beeId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Input is the admin create/update payload.
type Input struct {
	Author  string     `json:"author"`
	Role    *string    `json:"role"`
	Company *string    `json:"company"`
	Quote   string     `json:"quote"`
	Rating  *int       `json:"rating"`
	BeeID   *uuid.UUID `json:"beeId"`
}

// Normalize trims strings; blank optionals become nil.
func (in *Input) Normalize() {
	in.Author = strings.TrimSpace(in.Author)
	in.Quote = strings.TrimSpace(in.Quote)
	in.Role = trimOptional(in.Role)
	in.Company = trimOptional(in.Company)
	if in.BeeID != nil && *in.BeeID == uuid.Nil {
		in.BeeID = nil
	}
}

// Validate reports every invalid field.
func (in *Input) Validate() error {
	verr := &apperr.ValidationError{}
	if in.Author == "" {
		verr.Add("author", "Author is required")
	}
	if in.Quote == "" {
		verr.Add("quote", "Quote is required")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		verr.Add("rating", "Rating must be between 1 and 5")
	}
	return verr.OrNil()
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
