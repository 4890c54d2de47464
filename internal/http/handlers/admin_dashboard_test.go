package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/pkg/logging"
)

func TestGetDashboard_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	handler := NewAdminDashboardHandler(db, logging.Default())
	handler.now = func() time.Time { return now }

	leadID, bookingID, beeID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COUNT\\(\\*\\) FILTER").
		WillReturnRows(sqlmock.NewRows([]string{"total", "new", "booked"}).AddRow(12, 7, 3))
	mock.ExpectQuery("FROM leads l LEFT JOIN bees b").
		WithArgs(dashboardRecentLeads).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "company", "status", "name", "created_at"}).
			AddRow(leadID.String(), "Jane", "Smith", "jane@example.com", "Acme", "NEW", "Sales Bee", now).
			AddRow(uuid.NewString(), "Bob", "Jones", "bob@example.com", nil, "BOOKED", nil, now.Add(-time.Hour)))
	mock.ExpectQuery("FROM bookings k JOIN leads l").
		WithArgs(now, dashboardUpcomingBookings).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "start_time", "first_name", "last_name", "email", "name"}).
			AddRow(bookingID.String(), "CONFIRMED", now.Add(24*time.Hour), "Bob", "Jones", "bob@example.com", nil))
	mock.ExpectQuery("FROM bees b ORDER BY b.sort_order ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "leads", "bookings"}).
			AddRow(beeID.String(), "Sales Bee", "sales-bee", 5, 2))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, DashboardStats{TotalLeads: 12, NewLeads: 7, BookedLeads: 3, TotalBees: 1}, resp.Stats)
	require.Len(t, resp.RecentLeads, 2)
	assert.Equal(t, leadID, resp.RecentLeads[0].ID)
	require.NotNil(t, resp.RecentLeads[0].BeeName)
	assert.Equal(t, "Sales Bee", *resp.RecentLeads[0].BeeName)
	assert.Nil(t, resp.RecentLeads[1].Company)
	require.Len(t, resp.UpcomingBookings, 1)
	assert.Equal(t, "Bob Jones", resp.UpcomingBookings[0].LeadName)
	assert.Equal(t, 5, resp.Bees[0].LeadCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDashboard_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM leads").WillReturnError(errors.New("connection reset"))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	NewAdminDashboardHandler(db, logging.Discard()).GetDashboard(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to load dashboard"}`, rec.Body.String())
}
