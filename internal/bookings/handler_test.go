package bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/pkg/logging"
)

func newTestHandler(t *testing.T, secret string) (*Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc, secret, logging.Discard()), f
}

func postWebhook(h *Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cal", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.CalWebhook(rec, req)
	return rec
}

func TestCalWebhook_RejectsBadSignature(t *testing.T) {
	h, f := newTestHandler(t, "whsec")
	body := `{"triggerEvent":"BOOKING_CREATED","payload":{"uid":"cal-1","attendees":[{"email":"jane@example.com"}]}}`

	rec := postWebhook(h, body, Sign("wrong", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid signature")

	rec = postWebhook(h, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.bookings.Len())
}

func TestCalWebhook_SignedCreate(t *testing.T) {
	h, f := newTestHandler(t, "whsec")
	f.addLead(t, "jane@example.com", nil)
	body := `{"triggerEvent":"BOOKING_CREATED","payload":{"uid":"cal-1","attendees":[{"email":"jane@example.com"}]}}`

	rec := postWebhook(h, body, "sha256="+Sign("whsec", []byte(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, "created", resp["outcome"])
	assert.Equal(t, 1, f.bookings.Len())
}

func TestCalWebhook_UnsignedWhenSecretUnset(t *testing.T) {
	h, _ := newTestHandler(t, "")
	rec := postWebhook(h, `{"triggerEvent":"PING"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"ping"`)
}

func TestCalWebhook_MissingUID(t *testing.T) {
	h, _ := newTestHandler(t, "")
	rec := postWebhook(h, `{"triggerEvent":"BOOKING_CREATED","payload":{}}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid webhook payload", resp["error"])
	assert.NotEmpty(t, resp["details"])
}

func TestCalWebhook_MalformedJSON(t *testing.T) {
	h, _ := newTestHandler(t, "")
	rec := postWebhook(h, `{"triggerEvent":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingHandler(t *testing.T) {
	h, f := newTestHandler(t, "")
	lead := f.addLead(t, "jane@example.com", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/booking", strings.NewReader(`{"leadId":"`+lead.ID.String()+`","providerId":"cal-9"}`))
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Booking Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cal-9", resp.Booking.ProviderID)
	assert.Equal(t, StatusPending, resp.Booking.Status)

	req = httptest.NewRequest(http.MethodPost, "/api/booking", strings.NewReader(`{"leadId":"not-a-uuid"}`))
	rec = httptest.NewRecorder()
	h.CreateBooking(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateManualBookingHandler(t *testing.T) {
	h, f := newTestHandler(t, "")
	f.addLead(t, "jane@example.com", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/manual-booking", strings.NewReader(`{"email":"jane@example.com"}`))
	rec := httptest.NewRecorder()
	h.CreateManualBooking(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Booking created successfully")
	assert.Contains(t, rec.Body.String(), `"leadName":"Jane Smith"`)

	req = httptest.NewRequest(http.MethodPost, "/api/manual-booking", strings.NewReader(`{"email":"nobody@example.com"}`))
	rec = httptest.NewRecorder()
	h.CreateManualBooking(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No lead found with email: nobody@example.com")
}
