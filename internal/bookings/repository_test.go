package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{"id", "lead_id", "bee_id", "provider_id", "status", "start_time", "end_time", "created_at", "updated_at"}

func bookingRow(id, leadID uuid.UUID, providerID, status string, start *time.Time) *pgxmock.Rows {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(bookingRowColumns).
		AddRow(id, leadID, (*uuid.UUID)(nil), providerID, status, start, (*time.Time)(nil), now, now)
}

func TestPostgresRepository_InsertCreates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, leadID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery("ON CONFLICT \\(provider_id\\) DO NOTHING").
		WithArgs(pgxmock.AnyArg(), leadID, pgxmock.AnyArg(), "cal-1", "CONFIRMED", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(bookingRow(id, leadID, "cal-1", "CONFIRMED", nil))
	mock.ExpectExec("UPDATE leads SET status").
		WithArgs(leadID, "BOOKED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(mock)
	b, created, err := repo.Insert(context.Background(), &NewBooking{LeadID: leadID, ProviderID: "cal-1", Status: StatusConfirmed})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertConflictReturnsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, leadID := uuid.New(), uuid.New()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("ON CONFLICT \\(provider_id\\) DO NOTHING").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM bookings WHERE provider_id = \\$1").
		WithArgs("cal-1").
		WillReturnRows(bookingRow(id, leadID, "cal-1", "PENDING", &start))
	mock.ExpectRollback()

	repo := NewPostgresRepository(mock)
	b, created, err := repo.Insert(context.Background(), &NewBooking{LeadID: leadID, ProviderID: "cal-1", Status: StatusConfirmed})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.StartTime)
	assert.True(t, b.StartTime.Equal(start))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertRollsBackWhenLeadUpdateFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, leadID := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery("ON CONFLICT \\(provider_id\\) DO NOTHING").
		WillReturnRows(bookingRow(id, leadID, "cal-1", "CONFIRMED", nil))
	mock.ExpectExec("UPDATE leads SET status").
		WithArgs(leadID, "BOOKED").
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	b, created, err := NewPostgresRepository(mock).Insert(context.Background(), &NewBooking{LeadID: leadID, ProviderID: "cal-1", Status: StatusConfirmed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark lead booked")
	assert.False(t, created)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ApplyUpdateUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE bookings").
		WithArgs("missing", "CANCELLED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	_, err = repo.ApplyUpdate(context.Background(), "missing", Update{Status: StatusCancelled})
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByProviderIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM bookings WHERE provider_id = \\$1").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresRepository(mock).GetByProviderID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
