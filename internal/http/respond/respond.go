// Package respond writes JSON responses and maps apperr types to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/talentseek/b2beelanding/internal/apperr"
	"github.com/talentseek/b2beelanding/pkg/logging"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the error payload returned to clients.
type ErrorBody struct {
	Error   string              `json:"error"`
	Details []apperr.FieldIssue `json:"details,omitempty"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message writes {"error": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Decode reads a JSON request body into dst. Malformed bodies become a ValidationError.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is required")
		}
		return apperr.Invalid("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// Error maps err onto a status code and body. fallback is the client-facing
// message for unexpected failures; the cause is only logged.
func Error(w http.ResponseWriter, logger *logging.Logger, err error, fallback string) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		verr  *apperr.ValidationError
		nf    *apperr.NotFoundError
		cf    *apperr.ConflictError
		unath *apperr.UnauthorizedError
		dep   *apperr.DependencyError
	)
	switch {
	case errors.As(err, &verr):
		logger.Debug("request rejected", "error", err)
		JSON(w, http.StatusBadRequest, ErrorBody{Error: "Validation error", Details: verr.Issues})
	case errors.As(err, &nf):
		Message(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &cf):
		Message(w, http.StatusConflict, cf.Error())
	case errors.As(err, &unath):
		Message(w, http.StatusUnauthorized, "Unauthorized")
	case errors.As(err, &dep):
		logger.Error("dependency failure", "dependency", dep.Dependency, "error", err)
		Message(w, http.StatusBadGateway, fallback)
	default:
		logger.Error(fallback, "error", err)
		Message(w, http.StatusInternalServerError, fallback)
	}
}

// PathUUID parses the chi URL parameter name as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a UUID")
	}
	return id, nil
}
