package bees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/internal/apperr"
)

var beeColumns = []string{"id", "slug", "name", "tagline", "description", "icon", "features", "price_monthly", "is_active", "sort_order", "cta_cal_link", "created_at", "updated_at"}

func TestStoreListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM bees WHERE is_active = TRUE ORDER BY sort_order ASC").
		WillReturnRows(sqlmock.NewRows(beeColumns).
			AddRow(uuid.New().String(), "social-bee", "Social Bee", "Posts for you", "desc", "🐝", `{"Auto posting","Analytics"}`, 299, true, 1, nil, now, now).
			AddRow(uuid.New().String(), "bespoke-bee", "Bespoke Bee", "Custom", "desc", "🐝", `{}`, nil, true, 3, "https://cal.com/b2bee", now, now))

	items, err := NewStore(db).List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"Auto posting", "Analytics"}, items[0].Features)
	require.NotNil(t, items[0].PriceMonthly)
	assert.Equal(t, 299, *items[0].PriceMonthly)
	assert.Nil(t, items[0].CTACalLink)
	assert.Nil(t, items[1].PriceMonthly)
	assert.Equal(t, []string{}, items[1].Features)
	require.NotNil(t, items[1].CTACalLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreLookupBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, slug, name FROM bees WHERE slug = \\$1").
		WithArgs("sales-bee").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(id.String(), "sales-bee", "Sales Bee"))
	mock.ExpectQuery("SELECT id, slug, name FROM bees WHERE slug = \\$1").
		WithArgs("nonexistent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}))

	store := NewStore(db)
	ref, ok, err := store.LookupBySlug(context.Background(), "sales-bee")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "Sales Bee", ref.Name)

	ref, ok, err = store.LookupBySlug(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ref)

	ref, ok, err = store.LookupBySlug(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreateDuplicateSlugIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO bees").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bees_slug_key"})

	in := Input{Slug: "sales-bee", Name: "Sales Bee", Tagline: "t", Description: "d"}
	in.Normalize()
	_, err = NewStore(db).Create(context.Background(), in)

	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "slug", conflict.Field)
	assert.Equal(t, "sales-bee", conflict.Value)
}

func TestStoreUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE bees SET").WillReturnRows(sqlmock.NewRows(beeColumns))

	in := Input{Slug: "sales-bee", Name: "Sales Bee", Tagline: "t", Description: "d"}
	in.Normalize()
	_, err = NewStore(db).Update(context.Background(), uuid.New(), in)
	assert.ErrorIs(t, err, ErrBeeNotFound)
}
