// Package boatfund tracks contributions towards the team boat.
package boatfund

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

const (
	recentLimit        = 50
	defaultDescription = "Contribution"
)

// Contribution is one recorded payment into the fund.
type Contribution struct {
	ID          uuid.UUID `json:"id"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary is the public view of the fund.
type Summary struct {
	Contributions []Contribution `json:"contributions"`
	Total         int            `json:"total"`
}

// Input is the admin payload for a new contribution.
type Input struct {
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

// normalize validates in and returns the rounded amount and description.
func (in Input) normalize() (int, string, error) {
	if in.Amount == nil || *in.Amount <= 0 || math.IsInf(*in.Amount, 0) || math.IsNaN(*in.Amount) {
		return 0, "", apperr.Invalid("amount", "Invalid amount")
	}
	// The column is a Postgres INTEGER.
	rounded := math.Round(*in.Amount)
	if rounded <= 0 || rounded > math.MaxInt32 {
		return 0, "", apperr.Invalid("amount", "Invalid amount")
	}
	amount := int(rounded)
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = defaultDescription
	}
	return amount, desc, nil
}
