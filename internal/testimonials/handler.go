package testimonials

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

// Repository is the storage the admin handler needs.
type Repository interface {
	List(ctx context.Context) ([]Testimonial, error)
	Get(ctx context.Context, id uuid.UUID) (*Testimonial, error)
	Create(ctx context.Context, in Input) (*Testimonial, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Testimonial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler serves the admin testimonial endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a testimonial handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// AdminRoutes mounts under /admin/testimonials.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /admin/testimonials.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch testimonials")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"testimonials": items})
}

// Get handles GET /admin/testimonials/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to fetch testimonial")
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

// Create handles POST /admin/testimonials.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	item, err := h.repo.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create testimonial")
		return
	}
	h.logger.Info("testimonial created", "testimonial_id", item.ID)
	respond.JSON(w, http.StatusCreated, item)
}

// Update handles PUT /admin/testimonials/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	item, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to update testimonial")
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

// Delete handles DELETE /admin/testimonials/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to delete testimonial")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func mapNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, ErrTestimonialNotFound) {
		return apperr.NotFound("testimonial", id.String())
	}
	return err
}
