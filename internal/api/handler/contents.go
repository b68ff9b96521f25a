package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/internal/orchestrator"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Submitter starts background content jobs.
type Submitter interface {
	SubmitUpload(req orchestrator.UploadRequest) (models.JobRecord, error)
	SubmitEdit(req orchestrator.EditRequest) (models.JobRecord, error)
	SubmitDelete(req orchestrator.DeleteRequest) (models.JobRecord, error)
}

// ContentGetter loads one content record.
type ContentGetter interface {
	GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error)
}

// NewUploadHandler returns an http.HandlerFunc for POST /api/v1/contents.
// Uploads by moderators are approved unless they pass another status; contributors
// cannot set a status and their uploads wait for review.
func NewUploadHandler(svc Submitter, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseMultipart(w, r, maxBytes) {
			return
		}

		moderator := mw.HasScope(r, models.ScopeModerator)
		status := models.ContentStatusPending
		if moderator {
			status = models.ContentStatusApproved
		}
		if s := r.FormValue("status"); s != "" {
			if !moderator {
				response.Error(w, http.StatusForbidden, response.CodeForbidden, "Only moderators may set a status", nil)
				return
			}
			status = s
		}

		file, err := formFile(r, "file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
			return
		}
		cover, err := formFile(r, "cover")
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
			return
		}

		req := orchestrator.UploadRequest{
			Content: orchestrator.ContentFields{
				Title:       r.FormValue("title"),
				Description: r.FormValue("description"),
				ContentType: r.FormValue("content_type"),
				Author:      r.FormValue("author"),
				Speaker:     r.FormValue("speaker"),
				AudioType:   r.FormValue("audio_type"),
				Category:    r.FormValue("category"),
				Language:    r.FormValue("language"),
				Status:      status,
			},
			File:  file,
			Cover: cover,
		}
		if userID, ok := mw.GetUserID(r); ok {
			req.UploadedBy = &userID
		}

		rec, err := svc.SubmitUpload(req)
		if err != nil {
			writeError(w, err)
			return
		}
		response.Accepted(w, jobLocation(rec), rec)
	}
}

// NewEditHandler returns an http.HandlerFunc for PUT /api/v1/contents/{id}.
// Only the form fields that are sent are changed.
func NewEditHandler(svc Submitter, contents ContentGetter, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if !parseMultipart(w, r, maxBytes) {
			return
		}

		current, err := contents.GetContent(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		upd := models.ContentUpdate{
			Title:       formValue(r, "title"),
			Description: formValue(r, "description"),
			Author:      formValue(r, "author"),
			Speaker:     formValue(r, "speaker"),
			AudioType:   formValue(r, "audio_type"),
			Category:    formValue(r, "category"),
			Language:    formValue(r, "language"),
			Status:      formValue(r, "status"),
		}
		if upd.Status != nil && !mw.HasScope(r, models.ScopeModerator) {
			response.Error(w, http.StatusForbidden, response.CodeForbidden, "Only moderators may change the status", nil)
			return
		}

		newFile, err := formFile(r, "file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
			return
		}
		newCover, err := formFile(r, "cover")
		if err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
			return
		}

		rec, err := svc.SubmitEdit(orchestrator.EditRequest{
			ContentID:       current.ID,
			Title:           current.Title,
			ContentType:     current.ContentType,
			Speaker:         current.Speaker,
			AudioType:       current.AudioType,
			CurrentFileURL:  current.FileURL,
			CurrentCoverURL: current.CoverImageURL,
			Update:          upd,
			NewFile:         newFile,
			NewCover:        newCover,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		response.Accepted(w, jobLocation(rec), rec)
	}
}

// NewDeleteHandler returns an http.HandlerFunc for DELETE /api/v1/contents/{id}.
func NewDeleteHandler(svc Submitter, contents ContentGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		current, err := contents.GetContent(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		rec, err := svc.SubmitDelete(orchestrator.DeleteRequest{
			ID:            current.ID,
			Title:         current.Title,
			FileURL:       current.FileURL,
			CoverImageURL: current.CoverImageURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		response.Accepted(w, jobLocation(rec), rec)
	}
}
