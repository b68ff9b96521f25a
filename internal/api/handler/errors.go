// Package handler implements the HTTP handlers of the mediashelf API.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/internal/orchestrator"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/internal/transfer"
)

// writeError maps service errors onto the API error envelope.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "Resource not found", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, response.CodeDuplicate, "A value with this name already exists", nil)
	case errors.Is(err, transfer.ErrSignedURLUnavailable):
		response.Error(w, http.StatusConflict, response.CodeSignedURLUnavailable,
			"Signed links are not available for externally hosted files", nil)
	default:
		slog.Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, response.CodeInternal,
			"An unexpected error occurred", nil)
	}
}

// pathID parses a UUID URL parameter, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, name+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
