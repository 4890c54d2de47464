package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/internal/bookings"
	httpmiddleware "github.com/talentseek/b2beelanding/internal/http/middleware"
	"github.com/talentseek/b2beelanding/internal/leads"
	"github.com/talentseek/b2beelanding/internal/reminders"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const testAdminSecret = "admin-secret"

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func newTestConfig(t *testing.T) *Config {
	t.Helper()

	logger := logging.Discard()
	leadRepo := leads.NewInMemoryRepository()
	leadService := leads.NewService(leadRepo, nil, nil, logger, nil)
	bookingService := bookings.NewService(bookings.NewInMemoryRepository(leadRepo), leadRepo, nil, nil, logger, nil)
	job := reminders.NewJob(leadRepo, nil, logger, nil)

	return &Config{
		Logger:           logger,
		LeadsHandler:     leads.NewHandler(leadService, logger),
		BookingsHandler:  bookings.NewHandler(bookingService, "", logger),
		RemindersHandler: reminders.NewHandler(job, "", logger),
		AdminAuthSecret:  testAdminSecret,
	}
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testAdminSecret))
	require.NoError(t, err)
	return signed
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthEndpoint(t *testing.T) {
	rec := serve(New(newTestConfig(t)), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouterHealthDegraded(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Health = pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := serve(New(cfg), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}

func TestRouterLeadIntake(t *testing.T) {
	rec := serve(New(newTestConfig(t)), http.MethodPost, "/api/lead",
		`{"firstName":"Jane","lastName":"Smith","email":"jane@example.com","company":"Acme"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leads.SubmitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.LeadID)
}

func TestRouterLeadIntakeRateLimited(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.LeadLimiter = httpmiddleware.NewMemoryLimiter(1)
	router := New(cfg)

	body := `{"firstName":"Jane","lastName":"Smith","email":"jane@example.com"}`
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/lead", body, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/api/lead", body, nil).Code)

	// Reads are not throttled.
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", nil).Code)
}

func TestRouterCalWebhookPing(t *testing.T) {
	rec := serve(New(newTestConfig(t)), http.MethodPost, "/api/webhooks/cal", `{"triggerEvent":"PING","payload":{}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCronAcceptsGetAndPost(t *testing.T) {
	router := New(newTestConfig(t))
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := serve(router, method, "/api/cron/send-reminders", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := New(newTestConfig(t))

	rec := serve(router, http.MethodGet, "/admin/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/admin/leads", "", map[string]string{"Authorization": "Bearer " + adminToken(t)})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAdminDisabledWithoutSecret(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AdminAuthSecret = ""

	rec := serve(New(cfg), http.MethodGet, "/admin/leads", "", map[string]string{"Authorization": "Bearer " + adminToken(t)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterUnmountedHandlers(t *testing.T) {
	router := New(newTestConfig(t))
	for _, path := range []string{"/api/bees", "/api/boat-fund", "/sitemap.xml", "/metrics"} {
		rec := serve(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
