package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const (
	dashboardRecentLeads      = 10
	dashboardUpcomingBookings = 5
)

// AdminDashboardHandler serves the admin overview.
type AdminDashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// NewAdminDashboardHandler creates a new admin dashboard handler.
func NewAdminDashboardHandler(db *sql.DB, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// DashboardResponse is the admin overview payload.
type DashboardResponse struct {
	Stats            DashboardStats    `json:"stats"`
	RecentLeads      []RecentLead      `json:"recentLeads"`
	UpcomingBookings []UpcomingBooking `json:"upcomingBookings"`
	Bees             []BeeSummary      `json:"bees"`
}

// DashboardStats contains the headline counters.
type DashboardStats struct {
	TotalLeads  int `json:"totalLeads"`
	NewLeads    int `json:"newLeads"`
	BookedLeads int `json:"bookedLeads"`
	TotalBees   int `json:"totalBees"`
}

// RecentLead is one row of the latest-leads table.
type RecentLead struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Status    string    `json:"status"`
	BeeName   *string   `json:"beeName"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpcomingBooking is one row of the next-demos table.
type UpcomingBooking struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"startTime"`
	LeadName  string    `json:"leadName"`
	LeadEmail string    `json:"leadEmail"`
	BeeName   *string   `json:"beeName"`
}

// BeeSummary counts leads and bookings per Bee.
type BeeSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	LeadCount    int       `json:"leadCount"`
	BookingCount int       `json:"bookingCount"`
}

// GetDashboard returns the admin overview.
// GET /admin/dashboard
func (h *AdminDashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.load(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to load dashboard")
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *AdminDashboardHandler) load(ctx context.Context) (*DashboardResponse, error) {
	resp := &DashboardResponse{
		RecentLeads:      []RecentLead{},
		UpcomingBookings: []UpcomingBooking{},
		Bees:             []BeeSummary{},
	}

	if err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'NEW'), COUNT(*) FILTER (WHERE status = 'BOOKED') FROM leads`,
	).Scan(&resp.Stats.TotalLeads, &resp.Stats.NewLeads, &resp.Stats.BookedLeads); err != nil {
		return nil, fmt.Errorf("dashboard: lead counts: %w", err)
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT l.id, l.first_name, l.last_name, l.email, l.company, l.status, b.name, l.created_at
		 FROM leads l LEFT JOIN bees b ON b.id = l.bee_id
		 ORDER BY l.created_at DESC LIMIT $1`, dashboardRecentLeads)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent leads: %w", err)
	}
	for rows.Next() {
		var l RecentLead
		if err := rows.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Company, &l.Status, &l.BeeName, &l.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("dashboard: scan lead: %w", err)
		}
		resp.RecentLeads = append(resp.RecentLeads, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: recent leads: %w", err)
	}

	rows, err = h.db.QueryContext(ctx,
		`SELECT k.id, k.status, k.start_time, l.first_name, l.last_name, l.email, b.name
		 FROM bookings k JOIN leads l ON l.id = k.lead_id LEFT JOIN bees b ON b.id = k.bee_id
		 WHERE k.start_time >= $1
		 ORDER BY k.start_time ASC LIMIT $2`, h.now().UTC(), dashboardUpcomingBookings)
	if err != nil {
		return nil, fmt.Errorf("dashboard: upcoming bookings: %w", err)
	}
	for rows.Next() {
		var (
			b           UpcomingBooking
			first, last string
		)
		if err := rows.Scan(&b.ID, &b.Status, &b.StartTime, &first, &last, &b.LeadEmail, &b.BeeName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("dashboard: scan booking: %w", err)
		}
		b.LeadName = first + " " + last
		resp.UpcomingBookings = append(resp.UpcomingBookings, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: upcoming bookings: %w", err)
	}

	rows, err = h.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.slug,
		 (SELECT COUNT(*) FROM leads l WHERE l.bee_id = b.id),
		 (SELECT COUNT(*) FROM bookings k WHERE k.bee_id = b.id)
		 FROM bees b ORDER BY b.sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: bees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s BeeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.LeadCount, &s.BookingCount); err != nil {
			return nil, fmt.Errorf("dashboard: scan bee: %w", err)
		}
		resp.Bees = append(resp.Bees, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard: bees: %w", err)
	}
	resp.Stats.TotalBees = len(resp.Bees)
	return resp, nil
}
