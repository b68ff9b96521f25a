package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/orchestrator"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/stretchr/testify/require"
)

// --- mock Submitter ---

type mockSubmitter struct {
	mu      sync.Mutex
	uploads []orchestrator.UploadRequest
	edits   []orchestrator.EditRequest
	deletes []orchestrator.DeleteRequest
	err     error
}

func (m *mockSubmitter) record() models.JobRecord {
	return models.JobRecord{ID: uuid.New(), Status: models.JobStatusPreparing}
}

func (m *mockSubmitter) SubmitUpload(req orchestrator.UploadRequest) (models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, req)
	if m.err != nil {
		return models.JobRecord{}, m.err
	}
	rec := m.record()
	rec.Kind, rec.Title = models.JobKindUpload, req.Content.Title
	return rec, nil
}

func (m *mockSubmitter) SubmitEdit(req orchestrator.EditRequest) (models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, req)
	if m.err != nil {
		return models.JobRecord{}, m.err
	}
	rec := m.record()
	rec.Kind = models.JobKindEdit
	return rec, nil
}

func (m *mockSubmitter) SubmitDelete(req orchestrator.DeleteRequest) (models.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, req)
	if m.err != nil {
		return models.JobRecord{}, m.err
	}
	rec := m.record()
	rec.Kind, rec.Status = models.JobKindDelete, models.JobStatusDeleting
	return rec, nil
}

// --- mock ContentGetter ---

type mockContents map[uuid.UUID]*models.Content

func (m mockContents) GetContent(_ context.Context, id uuid.UUID) (*models.Content, error) {
	c, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// --- helpers ---

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, values map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mpw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="` + f.field + `"; filename="` + f.filename + `"`}
		if f.contentType != "" {
			h["Content-Type"] = []string{f.contentType}
		}
		w, err := mpw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())
	return &buf, mpw.FormDataContentType()
}

func withScopes(r *http.Request, scopes ...string) *http.Request {
	return r.WithContext(mw.SetScopes(r.Context(), scopes))
}

// withURLParams routes r as if chi had matched the given URL parameters.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}
