package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/api/handler"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockKeys struct {
	created []*models.APIKey
	revoked []uuid.UUID
}

func (m *mockKeys) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	m.created = append(m.created, key)
	return nil
}

func (m *mockKeys) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) { return m.created, nil }

func (m *mockKeys) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	for _, k := range m.created {
		if k.ID == id {
			m.revoked = append(m.revoked, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func TestCreateKey(t *testing.T) {
	m := &mockKeys{}
	caller := uuid.New()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys",
		strings.NewReader(`{"name":"uploader","scopes":["contributor"]}`))
	r = r.WithContext(mw.SetUserID(r.Context(), caller))

	rec := httptest.NewRecorder()
	handler.NewCreateKeyHandler(m, bcrypt.MinCost)(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got struct {
		ID        uuid.UUID `json:"id"`
		Key       string    `json:"key"`
		KeyPrefix string    `json:"key_prefix"`
		KeyHash   string    `json:"key_hash"`
	}
	decodeData(t, rec, &got)
	assert.True(t, strings.HasPrefix(got.Key, got.KeyPrefix))
	assert.Empty(t, got.KeyHash, "hash is never serialized")

	require.Len(t, m.created, 1)
	assert.Equal(t, caller, m.created[0].UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.created[0].KeyHash), []byte(got.Key)))
}

func TestCreateKey_Invalid(t *testing.T) {
	for _, body := range []string{`{`, `{"scopes":["admin"]}`, `{"name":"x","scopes":["root"]}`, `{"name":"x"}`} {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", strings.NewReader(body))
		handler.NewCreateKeyHandler(&mockKeys{}, bcrypt.MinCost)(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestListAndRevokeKeys(t *testing.T) {
	m := &mockKeys{created: []*models.APIKey{{ID: uuid.New(), Name: "a"}}}

	rec := httptest.NewRecorder()
	handler.NewListKeysHandler(m)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.APIKey
	decodeData(t, rec, &list)
	assert.Len(t, list, 1)

	id := m.created[0].ID.String()
	rec = httptest.NewRecorder()
	handler.NewRevokeKeyHandler(m)(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "keyID", id))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, m.revoked, 1)

	rec = httptest.NewRecorder()
	handler.NewRevokeKeyHandler(m)(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "keyID", uuid.New().String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
