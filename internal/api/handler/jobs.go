package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// JobManager exposes the tracked job list.
type JobManager interface {
	Jobs() []models.JobRecord
	Job(id uuid.UUID) (models.JobRecord, bool)
	CancelUpload(id uuid.UUID) bool
	ClearCompleted() int
	ClearInactive() int
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
func NewListJobsHandler(m JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		list := m.Jobs()
		active := 0
		for _, rec := range list {
			if rec.Status.IsActive() {
				active++
			}
		}
		response.List(w, list, response.ListMeta{Total: len(list), Active: &active})
	}
}

// jobLocation is the polling URL of a submitted job.
func jobLocation(rec models.JobRecord) string {
	return "/api/v1/jobs/" + rec.ID.String()
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{id}.
func NewGetJobHandler(m JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		rec, found := m.Job(id)
		if !found {
			response.Error(w, http.StatusNotFound, response.CodeNotFound, "Job not found", nil)
			return
		}
		response.JSON(w, rec)
	}
}

// NewCancelJobHandler returns an http.HandlerFunc for POST /api/v1/jobs/{id}/cancel.
func NewCancelJobHandler(m JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if _, found := m.Job(id); !found {
			response.Error(w, http.StatusNotFound, response.CodeNotFound, "Job not found", nil)
			return
		}
		if !m.CancelUpload(id) {
			response.Error(w, http.StatusConflict, response.CodeNotCancellable,
				"Job has finished or cannot be cancelled", nil)
			return
		}
		rec, _ := m.Job(id)
		response.JSON(w, rec)
	}
}

// NewClearJobsHandler returns an http.HandlerFunc for DELETE /api/v1/jobs.
// scope=completed (the default) removes completed and failed jobs; scope=inactive
// removes every finished job.
func NewClearJobsHandler(m JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var removed int
		switch r.URL.Query().Get("scope") {
		case "", "completed":
			removed = m.ClearCompleted()
		case "inactive":
			removed = m.ClearInactive()
		default:
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "scope must be completed or inactive", nil)
			return
		}
		response.JSON(w, map[string]int{"removed": removed})
	}
}
