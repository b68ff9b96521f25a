package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/internal/metrics"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit
	Metrics   *metrics.Middleware

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	UploadHandler http.HandlerFunc
	EditHandler   http.HandlerFunc
	DeleteHandler http.HandlerFunc
	LinkHandler   http.HandlerFunc

	ListJobsHandler  http.HandlerFunc
	GetJobHandler    http.HandlerFunc
	CancelJobHandler http.HandlerFunc
	ClearJobsHandler http.HandlerFunc

	ListTaxonomyHandler   http.HandlerFunc
	RenameTaxonomyHandler http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler)
	}

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeContributor, models.ScopeModerator))

			r.Post("/api/v1/contents", orNotImplemented(deps.UploadHandler))
			r.Put("/api/v1/contents/{id}", orNotImplemented(deps.EditHandler))
			r.Get("/api/v1/contents/{id}/link", orNotImplemented(deps.LinkHandler))

			r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
			r.Get("/api/v1/jobs/{id}", orNotImplemented(deps.GetJobHandler))
			r.Post("/api/v1/jobs/{id}/cancel", orNotImplemented(deps.CancelJobHandler))
			r.Delete("/api/v1/jobs", orNotImplemented(deps.ClearJobsHandler))

			r.Get("/api/v1/taxonomy/{kind}", orNotImplemented(deps.ListTaxonomyHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeModerator))

			r.Delete("/api/v1/contents/{id}", orNotImplemented(deps.DeleteHandler))
			r.Patch("/api/v1/taxonomy/{kind}/{id}", orNotImplemented(deps.RenameTaxonomyHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, response.CodeNotImplemented, "Endpoint not yet implemented", nil)
	}
}
