package boatfund

import (
	"context"
	"errors"
	"net/http"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// Repository is the storage the handler needs.
type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
	Create(ctx context.Context, amount int, description string) (*Contribution, error)
}

// Handler serves the boat fund endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a boat fund handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/boat-fund.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Summary(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch contributions")
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}

// Create handles POST /admin/boat-fund.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	amount, desc, err := in.normalize()
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			respond.Message(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		respond.Error(w, h.logger, err, "Failed to create contribution")
		return
	}

	c, err := h.repo.Create(r.Context(), amount, desc)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create contribution")
		return
	}
	h.logger.Info("boat fund contribution recorded", "contribution_id", c.ID, "amount", c.Amount)
	respond.JSON(w, http.StatusOK, c)
}
