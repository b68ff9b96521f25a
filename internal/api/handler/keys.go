package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/internal/apikey"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// KeyStore persists API keys.
type KeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

type createKeyResponse struct {
	*models.APIKey
	Key string `json:"key"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
// The raw key is only ever returned in this response.
func NewCreateKeyHandler(keys KeyStore, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string     `json:"name"`
			UserID *uuid.UUID `json:"user_id"`
			Scopes []string   `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "name is required", nil)
			return
		}

		userID := uuid.New()
		if req.UserID != nil {
			userID = *req.UserID
		} else if caller, ok := mw.GetUserID(r); ok {
			userID = caller
		}

		raw, key, err := apikey.Generate(req.Name, userID, req.Scopes, bcryptCost)
		if errors.Is(err, apikey.ErrInvalidScope) {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		if err := keys.CreateAPIKey(r.Context(), key); err != nil {
			writeError(w, err)
			return
		}
		response.Created(w, createKeyResponse{APIKey: key, Key: raw})
	}
}

// NewListKeysHandler returns an http.HandlerFunc for GET /api/v1/admin/keys.
func NewListKeysHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := keys.ListAPIKeys(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []*models.APIKey{}
		}
		response.JSON(w, list)
	}
}

// NewRevokeKeyHandler returns an http.HandlerFunc for DELETE /api/v1/admin/keys/{keyID}.
func NewRevokeKeyHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "keyID")
		if !ok {
			return
		}
		if err := keys.RevokeAPIKey(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		response.NoContent(w)
	}
}
