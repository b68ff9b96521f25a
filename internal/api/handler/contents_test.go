package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/api/handler"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/orchestrator"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxBytes = 1 << 20

func uploadReq(t *testing.T, values map[string]string, files ...part) *http.Request {
	t.Helper()
	body, ct := multipartBody(t, values, files...)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/contents", body)
	r.Header.Set("Content-Type", ct)
	return r
}

func audioFields() map[string]string {
	return map[string]string{
		"title":        "Talk",
		"content_type": "audio",
		"speaker":      "Jane Doe",
		"audio_type":   "lecture",
	}
}

func audioFile() part {
	return part{field: "file", filename: "talk.mp3", contentType: "audio/mpeg", data: []byte("ID3")}
}

// --- upload ---

func TestUpload_ContributorGetsPending(t *testing.T) {
	svc := &mockSubmitter{}
	userID := uuid.New()
	r := withScopes(uploadReq(t, audioFields(), audioFile(),
		part{field: "cover", filename: "talk.png", data: []byte("PNG")}), models.ScopeContributor)
	r = r.WithContext(mw.SetUserID(r.Context(), userID))

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, maxBytes)(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var job models.JobRecord
	decodeData(t, rec, &job)
	assert.Equal(t, "/api/v1/jobs/"+job.ID.String(), rec.Header().Get("Location"))
	assert.Equal(t, models.JobKindUpload, job.Kind)
	assert.Equal(t, "Talk", job.Title)

	require.Len(t, svc.uploads, 1)
	got := svc.uploads[0]
	assert.Equal(t, models.ContentStatusPending, got.Content.Status)
	assert.Equal(t, "Jane Doe", got.Content.Speaker)
	require.NotNil(t, got.File)
	assert.Equal(t, "talk.mp3", got.File.Name)
	assert.Equal(t, "audio/mpeg", got.File.MIMEType)
	assert.Equal(t, []byte("ID3"), got.File.Data)
	require.NotNil(t, got.Cover)
	assert.Equal(t, "image/png", got.Cover.MIMEType, "type is derived from the extension")
	require.NotNil(t, got.UploadedBy)
	assert.Equal(t, userID, *got.UploadedBy)
}

func TestUpload_ModeratorGetsApproved(t *testing.T) {
	svc := &mockSubmitter{}
	r := withScopes(uploadReq(t, audioFields(), audioFile()), models.ScopeModerator)

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, maxBytes)(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, models.ContentStatusApproved, svc.uploads[0].Content.Status)
}

func TestUpload_ContributorCannotSetStatus(t *testing.T) {
	svc := &mockSubmitter{}
	fields := audioFields()
	fields["status"] = models.ContentStatusApproved
	r := withScopes(uploadReq(t, fields, audioFile()), models.ScopeContributor)

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, maxBytes)(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.uploads)
}

func TestUpload_ValidationError(t *testing.T) {
	svc := &mockSubmitter{err: fmt.Errorf("%w: Content.Speaker is required", orchestrator.ErrInvalidRequest)}
	r := withScopes(uploadReq(t, audioFields(), audioFile()), models.ScopeContributor)

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, maxBytes)(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(t, rec))
	assert.Contains(t, rec.Body.String(), "Speaker is required")
}

func TestUpload_MissingFileIsPassedThrough(t *testing.T) {
	svc := &mockSubmitter{}
	r := withScopes(uploadReq(t, audioFields()), models.ScopeContributor)

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, maxBytes)(rec, r)

	require.Len(t, svc.uploads, 1)
	assert.Nil(t, svc.uploads[0].File)
}

func TestUpload_TooLarge(t *testing.T) {
	svc := &mockSubmitter{}
	big := part{field: "file", filename: "big.mp3", data: []byte(strings.Repeat("x", 4096))}
	r := withScopes(uploadReq(t, audioFields(), big), models.ScopeContributor)

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(svc, 1024)(rec, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", errCode(t, rec))
	assert.Empty(t, svc.uploads)
}

func TestUpload_NotMultipart(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/contents", strings.NewReader(`{"title":"x"}`))
	r.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.NewUploadHandler(&mockSubmitter{}, maxBytes)(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- edit ---

func seeded() (mockContents, *models.Content) {
	cover := "covers/a.png"
	c := &models.Content{
		ID:            uuid.New(),
		Title:         "Talk",
		ContentType:   "audio",
		Speaker:       "Jane Doe",
		AudioType:     "lecture",
		FileURL:       "gdrive://abc",
		CoverImageURL: &cover,
		Status:        models.ContentStatusApproved,
	}
	return mockContents{c.ID: c}, c
}

func editReq(t *testing.T, id string, values map[string]string, files ...part) *http.Request {
	t.Helper()
	body, ct := multipartBody(t, values, files...)
	r := httptest.NewRequest(http.MethodPut, "/api/v1/contents/"+id, body)
	r.Header.Set("Content-Type", ct)
	return withURLParams(r, "id", id)
}

func TestEdit_OnlySentFieldsChange(t *testing.T) {
	svc := &mockSubmitter{}
	contents, c := seeded()
	r := withScopes(editReq(t, c.ID.String(), map[string]string{"title": "New", "description": ""},
		part{field: "file", filename: "new.mp3", data: []byte("x")}), models.ScopeContributor)

	rec := httptest.NewRecorder()
	handler.NewEditHandler(svc, contents, maxBytes)(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, svc.edits, 1)
	got := svc.edits[0]
	assert.Equal(t, c.ID, got.ContentID)
	assert.Equal(t, "Talk", got.Title)
	assert.Equal(t, "gdrive://abc", got.CurrentFileURL)
	assert.Equal(t, c.CoverImageURL, got.CurrentCoverURL)
	require.NotNil(t, got.Update.Title)
	assert.Equal(t, "New", *got.Update.Title)
	require.NotNil(t, got.Update.Description)
	assert.Equal(t, "", *got.Update.Description)
	assert.Nil(t, got.Update.Speaker)
	assert.Nil(t, got.Update.Status)
	require.NotNil(t, got.NewFile)
	assert.Nil(t, got.NewCover)
}

func TestEdit_StatusRequiresModerator(t *testing.T) {
	contents, c := seeded()
	values := map[string]string{"status": models.ContentStatusRejected}

	svc := &mockSubmitter{}
	rec := httptest.NewRecorder()
	handler.NewEditHandler(svc, contents, maxBytes)(rec,
		withScopes(editReq(t, c.ID.String(), values), models.ScopeContributor))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.edits)

	rec = httptest.NewRecorder()
	handler.NewEditHandler(svc, contents, maxBytes)(rec,
		withScopes(editReq(t, c.ID.String(), values), models.ScopeModerator))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, svc.edits, 1)
	assert.Equal(t, models.ContentStatusRejected, *svc.edits[0].Update.Status)
}

func TestEdit_NotFound(t *testing.T) {
	contents, _ := seeded()
	rec := httptest.NewRecorder()
	handler.NewEditHandler(&mockSubmitter{}, contents, maxBytes)(rec,
		withScopes(editReq(t, uuid.New().String(), map[string]string{"title": "x"}), models.ScopeModerator))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEdit_BadID(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.NewEditHandler(&mockSubmitter{}, mockContents{}, maxBytes)(rec,
		editReq(t, "not-a-uuid", map[string]string{"title": "x"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- delete ---

func TestDelete_SubmitsCurrentReferences(t *testing.T) {
	svc := &mockSubmitter{}
	contents, c := seeded()
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/contents/"+c.ID.String(), nil)
	r = withURLParams(r, "id", c.ID.String())

	rec := httptest.NewRecorder()
	handler.NewDeleteHandler(svc, contents)(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var job models.JobRecord
	decodeData(t, rec, &job)
	assert.Equal(t, models.JobStatusDeleting, job.Status)

	require.Len(t, svc.deletes, 1)
	assert.Equal(t, c.ID, svc.deletes[0].ID)
	assert.Equal(t, "gdrive://abc", svc.deletes[0].FileURL)
	assert.Equal(t, "covers/a.png", *svc.deletes[0].CoverImageURL)
}

func TestDelete_InternalError(t *testing.T) {
	svc := &mockSubmitter{err: errors.New("boom")}
	contents, c := seeded()
	r := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", c.ID.String())

	rec := httptest.NewRecorder()
	handler.NewDeleteHandler(svc, contents)(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errCode(t, rec))
}
