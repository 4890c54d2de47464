package reminders

import (
	"net/http"

	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// Handler exposes the cron trigger and the admin test endpoint.
type Handler struct {
	job        *Job
	cronSecret string
	logger     *logging.Logger
}

// NewHandler creates a reminders handler.
func NewHandler(job *Job, cronSecret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{job: job, cronSecret: cronSecret, logger: logger}
}

type runResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Results Results `json:"results"`
}

// Trigger handles GET|POST /api/cron/send-reminders.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := Authorize(h.cronSecret, r.Header.Get("Authorization")); err != nil {
		h.logger.Warn("unauthorized reminder trigger", "remote_addr", r.RemoteAddr)
		respond.Error(w, h.logger, err, "")
		return
	}
	results, err := h.job.Run(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Reminder job failed")
		return
	}
	respond.JSON(w, http.StatusOK, runResponse{Success: true, Message: "Reminder job completed", Results: results})
}

type testRequest struct {
	Email string `json:"email"`
}

type testLead struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Bee   string `json:"bee,omitempty"`
}

// SendTest handles POST /admin/test-reminder.
func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	out, err := h.job.SendTest(r.Context(), req.Email)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to send reminder email")
		return
	}

	body := map[string]any{"message": out.Message}
	if out.SentAt != nil {
		body["sentAt"] = out.SentAt
	}
	if out.Sent {
		body["success"] = true
		body["lead"] = testLead{
			ID:    out.Lead.ID.String(),
			Email: out.Lead.Email,
			Name:  out.Lead.FullName(),
			Bee:   out.Lead.BeeName,
		}
	}
	respond.JSON(w, http.StatusOK, body)
}
