package leads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadRowColumns = []string{
	"id", "first_name", "last_name", "email", "company", "notes", "bee_id", "bee_name",
	"status", "utm_source", "utm_medium", "utm_campaign", "referrer", "reminder_sent_at", "created_at", "updated_at",
}

func leadRow(rows *pgxmock.Rows, id uuid.UUID, email string, beeID *uuid.UUID, beeName string, created time.Time) *pgxmock.Rows {
	company := "Acme"
	return rows.AddRow(id, "John", "Doe", email, &company, (*string)(nil), beeID, beeName,
		"NEW", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil), created, created)
}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	beeID := uuid.New()
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "John", "Doe", "john@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"NEW", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresRepository(mock)
	lead, err := repo.Create(context.Background(), &NewLead{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", BeeID: &beeID, BeeName: "Sales Bee",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Nil(t, lead.ReminderSentAt)
	assert.Equal(t, "Sales Bee", lead.BeeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindLatestByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	beeID := uuid.New()
	created := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE lower\\(l.email\\) = \\$1").
		WithArgs("john@example.com").
		WillReturnRows(leadRow(pgxmock.NewRows(leadRowColumns), id, "john@example.com", &beeID, "Sales Bee", created))
	mock.ExpectQuery("WHERE lower\\(l.email\\) = \\$1").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	lead, err := repo.FindLatestByEmail(context.Background(), " John@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	require.NotNil(t, lead.BeeID)
	assert.Equal(t, beeID, *lead.BeeID)
	assert.Equal(t, "Acme", lead.CompanyName())
	assert.Equal(t, StatusNew, lead.Status)

	_, err = repo.FindLatestByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListReminderCandidates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cutoff := time.Now().Add(-time.Minute)
	rows := pgxmock.NewRows(leadRowColumns)
	leadRow(rows, uuid.New(), "a@example.com", nil, "", cutoff.Add(-2*time.Hour))
	leadRow(rows, uuid.New(), "b@example.com", nil, "", cutoff.Add(-time.Hour))
	mock.ExpectQuery("l.status = 'NEW' AND l.reminder_sent_at IS NULL AND l.created_at <= \\$1").
		WithArgs(cutoff, 50).
		WillReturnRows(rows)

	got, err := NewPostgresRepository(mock).ListReminderCandidates(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a@example.com", got[0].Email)
	assert.Nil(t, got[0].BeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_MarkReminderSentIsConditional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("id = \\$1 AND reminder_sent_at IS NULL").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE leads SET reminder_sent_at").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	ok, err := repo.MarkReminderSent(context.Background(), id, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReminderSent(context.Background(), id, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatusMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE leads SET status").
		WithArgs(id, "BOOKED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPostgresRepository(mock).UpdateStatus(context.Background(), id, StatusBooked)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestPostgresRepository_ListWithStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE l.status = \\$1 ORDER BY l.created_at DESC, l.id DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs("BOOKED", 10, 20).
		WillReturnRows(pgxmock.NewRows(leadRowColumns))

	got, err := NewPostgresRepository(mock).List(context.Background(), ListFilter{Status: StatusBooked, Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
