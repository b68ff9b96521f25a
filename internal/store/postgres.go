package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

const apiKeyColumns = `id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at`

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// --- Contents ---

const contentColumns = `id, title, description, content_type, author, speaker, audio_type, category, language,
	file_url, cover_image_url, status, uploaded_by, created_at, updated_at`

func (s *PostgresStore) CreateContent(ctx context.Context, c *models.Content) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contents (`+contentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Title, c.Description, c.ContentType, c.Author, c.Speaker, c.AudioType, c.Category,
		c.Language, c.FileURL, c.CoverImageURL, c.Status, c.UploadedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContent(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) UpdateContent(ctx context.Context, id uuid.UUID, upd models.ContentUpdate) (*models.Content, error) {
	query := `UPDATE contents SET updated_at = $2`
	args := []any{id, time.Now().UTC()}
	argIdx := 3

	set := func(column string, v *string) {
		if v == nil {
			return
		}
		query += fmt.Sprintf(", %s = $%d", column, argIdx)
		args = append(args, *v)
		argIdx++
	}
	set("title", upd.Title)
	set("description", upd.Description)
	set("author", upd.Author)
	set("speaker", upd.Speaker)
	set("audio_type", upd.AudioType)
	set("category", upd.Category)
	set("language", upd.Language)
	set("status", upd.Status)
	set("file_url", upd.FileURL)
	set("cover_image_url", upd.CoverImageURL)

	query += " WHERE id = $1 RETURNING " + contentColumns

	c, err := scanContent(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRelated removes every row of a dependent table that references contentID.
// Deleting zero rows is not an error.
func (s *PostgresStore) DeleteRelated(ctx context.Context, table string, contentID uuid.UUID) error {
	if !isRelatedTable(table) {
		return fmt.Errorf("delete related: unknown table %q", table)
	}
	// table is checked against a fixed list above
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE content_id = $1`, contentID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ContentType, &c.Author, &c.Speaker,
		&c.AudioType, &c.Category, &c.Language, &c.FileURL, &c.CoverImageURL, &c.Status,
		&c.UploadedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// --- Taxonomy ---

const taxonomyColumns = `id, kind, name, folder_id, created_at`

// CreateTaxonomyValue inserts a reference value. It returns ErrDuplicateKey when the
// (kind, name) pair already exists, which callers ensuring a value may ignore.
func (s *PostgresStore) CreateTaxonomyValue(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error) {
	v, err := scanTaxonomy(s.pool.QueryRow(ctx,
		`INSERT INTO taxonomy_values (kind, name) VALUES ($1, $2) RETURNING `+taxonomyColumns,
		string(kind), name))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("create taxonomy value: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) GetTaxonomyValue(ctx context.Context, id uuid.UUID) (*models.TaxonomyValue, error) {
	v, err := scanTaxonomy(s.pool.QueryRow(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomy_values WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get taxonomy value: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) GetTaxonomyValueByName(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyValue, error) {
	v, err := scanTaxonomy(s.pool.QueryRow(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomy_values WHERE kind = $1 AND name = $2`, string(kind), name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get taxonomy value by name: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) ListTaxonomyValues(ctx context.Context, kind models.TaxonomyKind) ([]*models.TaxonomyValue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taxonomyColumns+` FROM taxonomy_values WHERE kind = $1 ORDER BY name`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list taxonomy values: %w", err)
	}
	defer rows.Close()

	values := []*models.TaxonomyValue{}
	for rows.Next() {
		v, err := scanTaxonomy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan taxonomy value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *PostgresStore) RenameTaxonomyValue(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE taxonomy_values SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("rename taxonomy value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetTaxonomyFolderID(ctx context.Context, id uuid.UUID, folderID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE taxonomy_values SET folder_id = $2 WHERE id = $1`, id, folderID)
	if err != nil {
		return fmt.Errorf("set taxonomy folder id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTaxonomy(row pgx.Row) (*models.TaxonomyValue, error) {
	var v models.TaxonomyValue
	var kind string
	if err := row.Scan(&v.ID, &kind, &v.Name, &v.FolderID, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Kind = models.TaxonomyKind(kind)
	return &v, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
