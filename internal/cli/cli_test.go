package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/apikey"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockKeyStore struct {
	created []*models.APIKey
	keys    []*models.APIKey
	err     error
}

func (m *mockKeyStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, key)
	return nil
}

func (m *mockKeyStore) ListAPIKeys(context.Context) ([]*models.APIKey, error) {
	return m.keys, m.err
}

func (m *mockKeyStore) RevokeAPIKey(context.Context, uuid.UUID) error { return m.err }

type mockPersister struct {
	records []models.JobRecord
	err     error
}

func (m *mockPersister) Save(context.Context, []models.JobRecord) error { return nil }

func (m *mockPersister) Load(context.Context) ([]models.JobRecord, error) {
	return m.records, m.err
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCreateKey_PrintsRawKeyOnce(t *testing.T) {
	ks := &mockKeyStore{}
	var out bytes.Buffer
	userID := uuid.New()

	err := createKey(context.Background(), &out, ks, "ops", userID.String(),
		[]string{models.ScopeModerator}, bcrypt.MinCost)
	require.NoError(t, err)
	require.Len(t, ks.created, 1)

	key := ks.created[0]
	assert.Equal(t, userID, key.UserID)
	assert.Equal(t, []string{models.ScopeModerator}, key.Scopes)

	var raw string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "key:") {
			raw = strings.TrimSpace(strings.TrimPrefix(line, "key:"))
		}
	}
	require.NotEmpty(t, raw)
	assert.Equal(t, key.KeyPrefix, raw[:apikey.PrefixLen])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)))
	assert.NotContains(t, out.String(), key.KeyHash)
}

func TestCreateKey_RandomUserWhenOmitted(t *testing.T) {
	ks := &mockKeyStore{}
	err := createKey(context.Background(), &bytes.Buffer{}, ks, "ops", "",
		[]string{models.ScopeContributor}, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ks.created[0].UserID)
}

func TestCreateKey_Errors(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		scopes  []string
		storeEr error
		wantErr error
	}{
		{name: "bad user id", userID: "nope", scopes: []string{models.ScopeAdmin}},
		{name: "unknown scope", scopes: []string{"owner"}, wantErr: apikey.ErrInvalidScope},
		{name: "store failure", scopes: []string{models.ScopeAdmin}, storeEr: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ks := &mockKeyStore{err: tt.storeEr}
			var out bytes.Buffer
			err := createKey(context.Background(), &out, ks, "ops", tt.userID, tt.scopes, bcrypt.MinCost)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, out.String())
		})
	}
}

func TestListKeys(t *testing.T) {
	used := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ks := &mockKeyStore{keys: []*models.APIKey{
		{ID: uuid.New(), Name: "uploader", KeyPrefix: "ms_abcde", Scopes: []string{"contributor"}},
		{ID: uuid.New(), Name: "ops", KeyPrefix: "ms_12345", Scopes: []string{"moderator", "admin"}, LastUsedAt: &used},
	}}

	var out bytes.Buffer
	require.NoError(t, listKeys(context.Background(), &out, ks))
	text := out.String()
	assert.Contains(t, text, "PREFIX")
	assert.Contains(t, text, "ms_abcde")
	assert.Contains(t, text, "never")
	assert.Contains(t, text, "moderator,admin")
	assert.Contains(t, text, "2026-03-01T12:00:00Z")
}

func TestListKeys_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listKeys(context.Background(), &out, &mockKeyStore{}))
	assert.Equal(t, "No API keys found\n", out.String())
}

func TestListJobs_Table(t *testing.T) {
	msg := "uploading file: bridge unreachable"
	p := &mockPersister{records: []models.JobRecord{
		{ID: uuid.New(), Kind: models.JobKindUpload, Title: "Talk", Status: models.JobStatusCompleted, Progress: 100,
			StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: uuid.New(), Kind: models.JobKindDelete, Title: "Old", Status: models.JobStatusError, Progress: 10,
			Error: &msg, StartTime: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)},
	}}

	var out bytes.Buffer
	require.NoError(t, listJobs(context.Background(), &out, p, false))
	text := out.String()
	assert.Contains(t, text, "STATUS")
	assert.Contains(t, text, "completed")
	assert.Contains(t, text, "100%")
	assert.Contains(t, text, msg)
	assert.Contains(t, text, "2026-01-02T03:04:05Z")
}

func TestListJobs_JSON(t *testing.T) {
	id := uuid.New()
	p := &mockPersister{records: []models.JobRecord{
		{ID: id, Kind: models.JobKindEdit, Title: "Talk", Status: models.JobStatusUploading, Progress: 50},
	}}

	var out bytes.Buffer
	require.NoError(t, listJobs(context.Background(), &out, p, true))

	var got []models.JobRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, models.JobStatusUploading, got[0].Status)
}

func TestListJobs_EmptyAndError(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listJobs(context.Background(), &out, &mockPersister{}, false))
	assert.Equal(t, "No jobs found\n", out.String())

	out.Reset()
	require.NoError(t, listJobs(context.Background(), &out, &mockPersister{}, true))
	assert.JSONEq(t, "[]", out.String())

	err := listJobs(context.Background(), &out, &mockPersister{err: errors.New("redis down")}, false)
	assert.EqualError(t, err, "redis down")
}

func TestCommands_RequireConnectionSettings(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "migrate up", args: []string{"migrate", "up"}, wantErr: "database URL is required"},
		{name: "migrate down", args: []string{"migrate", "down"}, wantErr: "database URL is required"},
		{name: "migrate down bad steps", args: []string{"migrate", "down", "--steps", "0"}, wantErr: "--steps must be positive"},
		{name: "apikey create", args: []string{"apikey", "create", "--name", "ops"}, wantErr: "database URL is required"},
		{name: "apikey create no name", args: []string{"apikey", "create"}, wantErr: "name"},
		{name: "apikey revoke bad id", args: []string{"apikey", "revoke", "nope"}, wantErr: "invalid key id"},
		{name: "jobs list", args: []string{"jobs", "list"}, wantErr: "redis URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRootCmd_Help(t *testing.T) {
	out, err := runRoot(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"migrate", "apikey", "jobs"} {
		assert.Contains(t, out, sub)
	}
}
