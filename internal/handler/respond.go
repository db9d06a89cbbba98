// Package handler provides the HTTP surface of the Meridian back-office:
// a chi router with page-style and JSON-API-style route groups over the
// same services.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/imagestore"
	"github.com/prn-tf/meridian-backoffice/internal/service"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError translates a service error into an HTTP response.
// Validation failures carry every message; datastore failures stay
// generic so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:    "validation failed",
			Messages: ve.Messages,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrSelfDeletion):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCSRFRejected):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidOrderStatus):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, imagestore.ErrUnsupportedType), errors.Is(err, imagestore.ErrTooLarge):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStoreFailure):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
