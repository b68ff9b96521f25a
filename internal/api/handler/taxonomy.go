package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Taxonomy lists and renames reference values.
type Taxonomy interface {
	ListTaxonomy(ctx context.Context, kind models.TaxonomyKind) ([]*models.TaxonomyValue, error)
	RenameTaxonomy(ctx context.Context, kind models.TaxonomyKind, id uuid.UUID, newName string) (*models.TaxonomyValue, error)
}

// NewListTaxonomyHandler returns an http.HandlerFunc for GET /api/v1/taxonomy/{kind}.
func NewListTaxonomyHandler(svc Taxonomy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := svc.ListTaxonomy(r.Context(), models.TaxonomyKind(chi.URLParam(r, "kind")))
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, values)
	}
}

// NewRenameTaxonomyHandler returns an http.HandlerFunc for PATCH /api/v1/taxonomy/{kind}/{id}.
func NewRenameTaxonomyHandler(svc Taxonomy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid JSON body", nil)
			return
		}

		v, err := svc.RenameTaxonomy(r.Context(), models.TaxonomyKind(chi.URLParam(r, "kind")), id, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, v)
	}
}
