package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Tables holding rows that reference a content record. They are cleared explicitly
// before the content row itself is deleted.
const (
	TableBookmarks       = "bookmarks"
	TableReviews         = "reviews"
	TableCollectionItems = "collection_items"
)

// RelatedTables lists every table cleared by DeleteRelated.
var RelatedTables = []string{TableBookmarks, TableReviews, TableCollectionItems}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateContent(ctx context.Context, content *models.Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error)
	UpdateContent(ctx context.Context, id uuid.UUID, upd models.ContentUpdate) (*models.Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	DeleteRelated(ctx context.Context, table string, contentID uuid.UUID) error

	CreateTaxonomyValue(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error)
	GetTaxonomyValue(ctx context.Context, id uuid.UUID) (*models.TaxonomyValue, error)
	GetTaxonomyValueByName(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error)
	ListTaxonomyValues(ctx context.Context, kind models.TaxonomyKind) ([]*models.TaxonomyValue, error)
	RenameTaxonomyValue(ctx context.Context, id uuid.UUID, name string) error
	SetTaxonomyFolderID(ctx context.Context, id uuid.UUID, folderID string) error
}

func isRelatedTable(table string) bool {
	for _, t := range RelatedTables {
		if t == table {
			return true
		}
	}
	return false
}
