package bookings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusRescheduled Status = "RESCHEDULED"
)

// ErrBookingNotFound is returned when no booking has the requested provider id.
var ErrBookingNotFound = errors.New("bookings: not found")

// Booking is a scheduled demo tied to a lead.
type Booking struct {
	ID         uuid.UUID  `json:"id"`
	LeadID     uuid.UUID  `json:"leadId"`
	BeeID      *uuid.UUID `json:"beeId"`
	ProviderID string     `json:"providerId"`
	Status     Status     `json:"status"`
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewBooking is what the repository inserts.
type NewBooking struct {
	LeadID     uuid.UUID
	BeeID      *uuid.UUID
	ProviderID string
	Status     Status
	StartTime  *time.Time
	EndTime    *time.Time
}

// Update is a webhook-driven change. Nil times leave the stored value alone.
type Update struct {
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
}
