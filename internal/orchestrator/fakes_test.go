package orchestrator_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/bridge"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	mu         sync.Mutex
	contents   map[uuid.UUID]*models.Content
	taxonomy   map[uuid.UUID]*models.TaxonomyValue
	related    map[string][]uuid.UUID
	updates    []models.ContentUpdate
	createErr  error
	relatedErr error
	onCreate   func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contents: map[uuid.UUID]*models.Content{},
		taxonomy: map[uuid.UUID]*models.TaxonomyValue{},
		related:  map[string][]uuid.UUID{},
	}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) GetAPIKeyByPrefix(context.Context, string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *fakeStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }
func (s *fakeStore) CreateAPIKey(context.Context, *models.APIKey) error { return nil }
func (s *fakeStore) ListAPIKeys(context.Context) ([]*models.APIKey, error) { return nil, nil }
func (s *fakeStore) RevokeAPIKey(context.Context, uuid.UUID) error { return nil }

func (s *fakeStore) CreateContent(_ context.Context, c *models.Content) error {
	if s.onCreate != nil {
		s.onCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *c
	s.contents[c.ID] = &cp
	return nil
}

func (s *fakeStore) GetContent(_ context.Context, id uuid.UUID) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) UpdateContent(_ context.Context, id uuid.UUID, upd models.ContentUpdate) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, upd)
	c, ok := s.contents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&c.Title, upd.Title)
	apply(&c.Description, upd.Description)
	apply(&c.Speaker, upd.Speaker)
	apply(&c.AudioType, upd.AudioType)
	apply(&c.Status, upd.Status)
	apply(&c.FileURL, upd.FileURL)
	if upd.CoverImageURL != nil {
		c.CoverImageURL = upd.CoverImageURL
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) DeleteContent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.contents, id)
	return nil
}

func (s *fakeStore) DeleteRelated(_ context.Context, table string, contentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relatedErr != nil && table == store.TableReviews {
		return s.relatedErr
	}
	s.related[table] = append(s.related[table], contentID)
	return nil
}

func (s *fakeStore) CreateTaxonomyValue(_ context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.taxonomy {
		if v.Kind == kind && v.Name == name {
			return nil, store.ErrDuplicateKey
		}
	}
	v := &models.TaxonomyValue{ID: uuid.New(), Kind: kind, Name: name}
	s.taxonomy[v.ID] = v
	return v, nil
}

func (s *fakeStore) GetTaxonomyValue(_ context.Context, id uuid.UUID) (*models.TaxonomyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.taxonomy[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *fakeStore) GetTaxonomyValueByName(_ context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.taxonomy {
		if v.Kind == kind && v.Name == name {
			cp := *v
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) ListTaxonomyValues(_ context.Context, kind models.TaxonomyKind) ([]*models.TaxonomyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.TaxonomyValue{}
	for _, v := range s.taxonomy {
		if v.Kind == kind {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) RenameTaxonomyValue(_ context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.taxonomy[id]
	if !ok {
		return store.ErrNotFound
	}
	v.Name = name
	return nil
}

func (s *fakeStore) SetTaxonomyFolderID(_ context.Context, id uuid.UUID, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.taxonomy[id]
	if !ok {
		return store.ErrNotFound
	}
	v.FolderID = &folderID
	return nil
}

func (s *fakeStore) taxonomyNames(kind models.TaxonomyKind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, v := range s.taxonomy {
		if v.Kind == kind {
			names = append(names, v.Name)
		}
	}
	return names
}

func (s *fakeStore) contentList() []models.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Content
	for _, c := range s.contents {
		out = append(out, *c)
	}
	return out
}

var _ store.Store = (*fakeStore)(nil)

// fakeBridge records folder renames.
type fakeBridge struct {
	mu      sync.Mutex
	reply   *bridge.Response
	err     error
	calls   []string
	enabled bool
}

func (b *fakeBridge) record(call string) (*bridge.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	return b.reply, b.err
}

func (b *fakeBridge) Upload(_ context.Context, req bridge.UploadRequest) (*bridge.Response, error) {
	return b.record("upload:" + req.FileName)
}

func (b *fakeBridge) Delete(_ context.Context, fileID string) (*bridge.Response, error) {
	return b.record("delete:" + fileID)
}

func (b *fakeBridge) Rename(_ context.Context, fileID, newName string) (*bridge.Response, error) {
	return b.record("rename:" + fileID + "=" + newName)
}

func (b *fakeBridge) RenameFolderByID(_ context.Context, folderID, newName string) (*bridge.Response, error) {
	return b.record("renameFolderById:" + folderID + "=" + newName)
}

func (b *fakeBridge) RenameFolder(_ context.Context, oldPath, newFolderName string) (*bridge.Response, error) {
	return b.record("renameFolder:" + oldPath + "=" + newFolderName)
}

func (b *fakeBridge) Configured() bool { return b.enabled }

func (b *fakeBridge) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}
