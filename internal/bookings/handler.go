package bookings

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const maxWebhookBytes = 1 << 20

// Handler serves the booking endpoints and the Cal.com webhook.
type Handler struct {
	service       *Service
	webhookSecret string
	logger        *logging.Logger
}

// NewHandler creates a bookings handler. An empty webhookSecret disables signature checks.
func NewHandler(service *Service, webhookSecret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, webhookSecret: webhookSecret, logger: logger}
}

// CalWebhook handles POST /api/webhooks/cal.
func (h *Handler) CalWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if h.webhookSecret != "" && !VerifySignature(h.webhookSecret, payload, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("invalid cal.com webhook signature")
		respond.Message(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var evt WebhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Warn("undecodable cal.com webhook", "error", err)
		respond.Message(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	outcome, err := h.service.HandleEvent(r.Context(), evt)
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "Invalid webhook payload", Details: verr.Issues})
			return
		}
		respond.Error(w, h.logger, err, "Failed to process webhook")
		return
	}

	h.logger.Info("cal.com webhook processed", "trigger", evt.TriggerEvent, "uid", evt.Payload.UID, "outcome", outcome)
	respond.JSON(w, http.StatusOK, map[string]any{"received": true, "outcome": outcome})
}

// CreateBooking handles POST /api/booking.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req DirectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	booking, err := h.service.CreateDirect(r.Context(), req)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create booking")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"booking": booking})
}

type manualRequest struct {
	Email string `json:"email"`
}

// CreateManualBooking handles POST /api/manual-booking.
func (h *Handler) CreateManualBooking(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	result, err := h.service.CreateManual(r.Context(), req.Email)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create booking")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking created successfully",
		"booking": result,
	})
}
