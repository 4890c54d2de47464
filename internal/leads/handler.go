package leads

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/http/respond"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SubmitResponse is the body of a successful POST /api/lead.
type SubmitResponse struct {
	Success    bool       `json:"success"`
	LeadID     uuid.UUID  `json:"leadId"`
	CalPrefill CalPrefill `json:"calPrefill"`
}

// CreateLead handles POST /api/lead
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.logger, err, "")
		return
	}

	result, err := h.service.Submit(r.Context(), req)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to create lead")
		return
	}

	respond.JSON(w, http.StatusOK, SubmitResponse{
		Success:    true,
		LeadID:     result.Lead.ID,
		CalPrefill: result.CalPrefill,
	})
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: defaultListLimit}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = min(limit, maxListLimit)
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filter.Status = Status(strings.ToUpper(status))
	}

	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.logger, err, "Failed to list leads")
		return
	}

	respond.JSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  items,
		Count:  len(items),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}
