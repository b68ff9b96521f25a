package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/mediashelf/internal/api/response"
)

// Linker turns durable references into URLs.
type Linker interface {
	PublicURL(ref string) string
	SignedURL(ctx context.Context, ref string) (string, error)
}

type linkResponse struct {
	URL    string `json:"url"`
	Signed bool   `json:"signed"`
}

// NewLinkHandler returns an http.HandlerFunc for GET /api/v1/contents/{id}/link.
// ?signed=true asks for a time-limited link; ?target=cover links the cover image.
func NewLinkHandler(contents ContentGetter, links Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		signed := false
		if v := r.URL.Query().Get("signed"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "signed must be true or false", nil)
				return
			}
			signed = b
		}

		content, err := contents.GetContent(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		ref := content.FileURL
		switch r.URL.Query().Get("target") {
		case "", "file":
		case "cover":
			if content.CoverImageURL == nil || *content.CoverImageURL == "" {
				response.Error(w, http.StatusNotFound, response.CodeNotFound, "Content has no cover image", nil)
				return
			}
			ref = *content.CoverImageURL
		default:
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "target must be file or cover", nil)
			return
		}

		if !signed {
			response.JSON(w, linkResponse{URL: links.PublicURL(ref)})
			return
		}

		url, err := links.SignedURL(r.Context(), ref)
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, linkResponse{URL: url, Signed: true})
	}
}
