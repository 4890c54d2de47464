package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_ReminderCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Now()
	cutoff := now.Add(-time.Minute)

	older, _ := repo.Create(ctx, &NewLead{FirstName: "A", LastName: "A", Email: "a@example.com", CreatedAt: now.Add(-2 * time.Hour)})
	old, _ := repo.Create(ctx, &NewLead{FirstName: "B", LastName: "B", Email: "b@example.com", CreatedAt: now.Add(-time.Hour)})
	_, _ = repo.Create(ctx, &NewLead{FirstName: "C", LastName: "C", Email: "c@example.com", CreatedAt: now})
	booked, _ := repo.Create(ctx, &NewLead{FirstName: "D", LastName: "D", Email: "d@example.com", CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, repo.UpdateStatus(ctx, booked.ID, StatusBooked))
	reminded, _ := repo.Create(ctx, &NewLead{FirstName: "E", LastName: "E", Email: "e@example.com", CreatedAt: now.Add(-time.Hour)})
	ok, err := repo.MarkReminderSent(ctx, reminded.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.ListReminderCandidates(ctx, cutoff, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, old.ID, got[1].ID)

	got, err = repo.ListReminderCandidates(ctx, cutoff, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInMemoryRepository_MarkReminderSentOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	lead, _ := repo.Create(ctx, &NewLead{FirstName: "A", LastName: "A", Email: "a@example.com"})

	first := time.Now()
	ok, err := repo.MarkReminderSent(ctx, lead.ID, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReminderSent(ctx, lead.ID, first.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	stored, _ := repo.GetByID(ctx, lead.ID)
	require.NotNil(t, stored.ReminderSentAt)
	assert.True(t, stored.ReminderSentAt.Equal(first.UTC()))
}

func TestInMemoryRepository_FindLatestByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Now()
	_, _ = repo.Create(ctx, &NewLead{FirstName: "Old", LastName: "X", Email: "x@example.com", CreatedAt: now.Add(-time.Hour)})
	newest, _ := repo.Create(ctx, &NewLead{FirstName: "New", LastName: "X", Email: "x@example.com", CreatedAt: now})

	got, err := repo.FindLatestByEmail(ctx, "  X@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)

	_, err = repo.FindLatestByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestInMemoryRepository_KeepsSubmittedEmailCasing(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	lead, err := repo.Create(ctx, &NewLead{FirstName: "Jo", LastName: "Lee", Email: "Jo.Lee@Example.com"})
	require.NoError(t, err)

	got, err := repo.FindLatestByEmail(ctx, "jo.lee@example.COM")
	require.NoError(t, err)
	assert.Equal(t, lead.ID, got.ID)
	assert.Equal(t, "Jo.Lee@Example.com", got.Email)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	lead, _ := repo.Create(ctx, &NewLead{FirstName: "A", LastName: "A", Email: "a@example.com"})
	lead.Status = StatusLost

	stored, _ := repo.GetByID(ctx, lead.ID)
	assert.Equal(t, StatusNew, stored.Status)
}
