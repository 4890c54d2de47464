package abm

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

// Repository is the ABM storage used by the handlers.
type Repository interface {
	ListSales(ctx context.Context) ([]SalesPage, error)
	GetSales(ctx context.Context, id uuid.UUID) (*SalesPage, error)
	GetActiveSales(ctx context.Context, identifier string) (*SalesPage, error)
	CreateSales(ctx context.Context, in SalesInput) (*SalesPage, error)
	UpdateSales(ctx context.Context, id uuid.UUID, u SalesUpdate) (*SalesPage, error)
	DeleteSales(ctx context.Context, id uuid.UUID) error

	ListMarinas(ctx context.Context) ([]MarinaPage, error)
	GetMarina(ctx context.Context, id uuid.UUID) (*MarinaPage, error)
	GetActiveMarina(ctx context.Context, identifier string) (*MarinaPage, error)
	CreateMarina(ctx context.Context, in MarinaInput) (*MarinaPage, error)
	UpdateMarina(ctx context.Context, id uuid.UUID, in MarinaInput) (*MarinaPage, error)
	DeleteMarina(ctx context.Context, id uuid.UUID) error
}

// Handler serves the ABM sales and marina page endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates an ABM handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// SalesRoutes mounts under /admin/abm-pages.
func (h *Handler) SalesRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSales)
	r.Post("/", h.CreateSales)
	r.Get("/{id}", h.GetSales)
	r.Put("/{id}", h.UpdateSales)
	r.Delete("/{id}", h.DeleteSales)
	return r
}

// MarinaRoutes mounts under /admin/abm-marinas.
func (h *Handler) MarinaRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMarinas)
	r.Post("/", h.CreateMarina)
	r.Get("/{id}", h.GetMarina)
	r.Put("/{id}", h.UpdateMarina)
	r.Delete("/{id}", h.DeleteMarina)
	return r
}

// PublicSales handles GET /api/abm-pages/{identifier}.
func (h *Handler) PublicSales(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.GetActiveSales(r.Context(), chi.URLParam(r, "identifier"))
	if errors.Is(err, ErrPageNotFound) {
		respond.Message(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"page": page})
}

// PublicMarina handles GET /api/abm-marinas/{identifier}.
func (h *Handler) PublicMarina(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.GetActiveMarina(r.Context(), chi.URLParam(r, "identifier"))
	if errors.Is(err, ErrPageNotFound) {
		respond.Message(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch marina ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"page": page})
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	pages, err := h.repo.ListSales(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch ABM pages")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (h *Handler) GetSales(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.GetSales(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to fetch ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *Handler) CreateSales(w http.ResponseWriter, r *http.Request) {
	var in SalesInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.CreateSales(r.Context(), in)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create ABM page")
		return
	}
	h.logger.Info("abm page created", "page_id", page.ID, "identifier", page.LinkedinIdentifier)
	respond.JSON(w, http.StatusCreated, page)
}

func (h *Handler) UpdateSales(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	var u SalesUpdate
	if err := respond.Decode(r, &u); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	if err := u.Validate(); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.UpdateSales(r.Context(), id, u)
	if err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to update ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *Handler) DeleteSales(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	if err := h.repo.DeleteSales(r.Context(), id); err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to delete ABM page")
		return
	}
	h.logger.Info("abm page deleted", "page_id", id)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListMarinas(w http.ResponseWriter, r *http.Request) {
	pages, err := h.repo.ListMarinas(r.Context())
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to fetch marina ABM pages")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (h *Handler) GetMarina(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.GetMarina(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to fetch marina ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"page": page})
}

func (h *Handler) CreateMarina(w http.ResponseWriter, r *http.Request) {
	in, err := decodeMarina(r)
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.CreateMarina(r.Context(), in)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create marina ABM page")
		return
	}
	h.logger.Info("marina page created", "page_id", page.ID, "identifier", page.LinkedinIdentifier)
	respond.JSON(w, http.StatusCreated, map[string]any{"page": page})
}

func (h *Handler) UpdateMarina(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	in, err := decodeMarina(r)
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	page, err := h.repo.UpdateMarina(r.Context(), id, in)
	if err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to update marina ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"page": page})
}

func (h *Handler) DeleteMarina(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathUUID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}
	if err := h.repo.DeleteMarina(r.Context(), id); err != nil {
		respond.Error(w, h.logger, pageNotFound(err), "Failed to delete marina ABM page")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeMarina(r *http.Request) (MarinaInput, error) {
	var in MarinaInput
	if err := respond.Decode(r, &in); err != nil {
		return in, err
	}
	in.Normalize()
	return in, in.Validate()
}

func pageNotFound(err error) error {
	if errors.Is(err, ErrPageNotFound) {
		return &apperr.NotFoundError{Resource: "abm page", Message: "Page not found"}
	}
	return err
}
