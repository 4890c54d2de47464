package bees

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/internal/testimonials"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const (
	listTestimonialLimit   = 3
	detailTestimonialLimit = 6
)

// Repository is the Bee storage used by the handlers.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Bee, error)
	Get(ctx context.Context, id uuid.UUID) (*Bee, error)
	GetActiveBySlug(ctx context.Context, slug string) (*Bee, error)
	Create(ctx context.Context, in Input) (*Bee, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Bee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ActiveSlugs(ctx context.Context) ([]SlugStamp, error)
}

// TestimonialSource supplies the quotes shown next to a Bee.
type TestimonialSource interface {
	ListForBee(ctx context.Context, beeID uuid.UUID, limit int) ([]testimonials.Testimonial, error)
}

// Handler serves public and admin Bee endpoints plus the sitemap.
type Handler struct {
	repo         Repository
	testimonials TestimonialSource
	baseURL      string
	logger       *logging.Logger
}

// NewHandler creates a Bee handler. baseURL prefixes sitemap entries.
func NewHandler(repo Repository, quotes TestimonialSource, baseURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:         repo,
		testimonials: quotes,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

// AdminRoutes mounts under /admin/bees.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.AdminList)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// PublicList handles GET /api/bees: live Bees with their latest testimonials.
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), true)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch bees")
		return
	}
	for i := range items {
		if err := h.attachTestimonials(r.Context(), &items[i], listTestimonialLimit); err != nil {
			respond.Error(w, h.logger, err, "Failed to fetch bees")
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"bees": items})
}

// PublicGet handles GET /api/bees/{slug}.
func (h *Handler) PublicGet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	bee, err := h.repo.GetActiveBySlug(r.Context(), slug)
	if errors.Is(err, ErrBeeNotFound) {
		respond.Message(w, http.StatusNotFound, "Bee not found")
		return
	}
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch bee")
		return
	}
	if err := h.attachTestimonials(r.Context(), bee, detailTestimonialLimit); err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch bee")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"bee": bee})
}

// AdminList handles GET /admin/bees, including inactive Bees.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), false)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch bees")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"bees": items})
}

// Get handles GET /admin/bees/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	bee, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to fetch bee")
		return
	}
	respond.JSON(w, http.StatusOK, bee)
}

// Create handles POST /admin/bees.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	bee, err := h.repo.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create bee")
		return
	}
	h.logger.Info("bee created", "bee_id", bee.ID, "slug", bee.Slug)
	respond.JSON(w, http.StatusCreated, bee)
}

// Update handles PUT /admin/bees/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	in, err := decodeInput(r)
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	bee, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to update bee")
		return
	}
	respond.JSON(w, http.StatusOK, bee)
}

// Delete handles DELETE /admin/bees/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respond.Error(w, h.logger, mapNotFound(err, id), "Failed to delete bee")
		return
	}
	h.logger.Info("bee deleted", "bee_id", id)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) attachTestimonials(ctx context.Context, bee *Bee, limit int) error {
	bee.Testimonials = []testimonials.Testimonial{}
	if h.testimonials == nil {
		return nil
	}
	quotes, err := h.testimonials.ListForBee(ctx, bee.ID, limit)
	if err != nil {
		return err
	}
	bee.Testimonials = quotes
	return nil
}

func decodeInput(r *http.Request) (Input, error) {
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		return in, err
	}
	in.Normalize()
	return in, in.Validate()
}

func mapNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, ErrBeeNotFound) {
		return apperr.NotFound("bee", id.String())
	}
	return err
}
