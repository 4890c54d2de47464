package boatfund

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/pkg/logging"
)

type memoryRepo struct {
	items []Contribution
}

func (m *memoryRepo) Summary(context.Context) (*Summary, error) {
	out := &Summary{Contributions: []Contribution{}}
	for i := len(m.items) - 1; i >= 0; i-- {
		out.Contributions = append(out.Contributions, m.items[i])
		out.Total += m.items[i].Amount
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, amount int, description string) (*Contribution, error) {
	c := Contribution{ID: uuid.New(), Amount: amount, Description: description, CreatedAt: time.Now().UTC()}
	m.items = append(m.items, c)
	return &c, nil
}

func TestCreateRoundsAndDefaultsDescription(t *testing.T) {
	repo := &memoryRepo{}
	h := NewHandler(repo, logging.Discard())

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/admin/boat-fund", strings.NewReader(`{"amount":99.6}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var c Contribution
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, 100, c.Amount)
	assert.Equal(t, "Contribution", c.Description)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/boat-fund", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 100, summary.Total)
	assert.Len(t, summary.Contributions, 1)
}

func TestCreateAcceptsLargestStorableAmount(t *testing.T) {
	repo := &memoryRepo{}
	rec := httptest.NewRecorder()
	NewHandler(repo, logging.Discard()).
		Create(rec, httptest.NewRequest(http.MethodPost, "/admin/boat-fund", strings.NewReader(`{"amount":2147483647}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var c Contribution
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, 2147483647, c.Amount)
}

func TestCreateRejectsInvalidAmount(t *testing.T) {
	cases := []string{`{}`, `{"amount":0}`, `{"amount":-5}`, `{"amount":0.2}`, `{"amount":null,"description":"x"}`, `{"amount":2147483648}`, `{"amount":1e300}`}
	for _, body := range cases {
		t.Run(body, func(t *testing.T) {
			repo := &memoryRepo{}
			rec := httptest.NewRecorder()
			NewHandler(repo, logging.Discard()).
				Create(rec, httptest.NewRequest(http.MethodPost, "/admin/boat-fund", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid amount"}`, rec.Body.String())
			assert.Empty(t, repo.items)
		})
	}
}
