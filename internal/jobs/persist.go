package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kiranshivaraju/mediashelf/internal/cache"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// Persister stores and restores the whole job list.
type Persister interface {
	Save(ctx context.Context, records []models.JobRecord) error
	Load(ctx context.Context) ([]models.JobRecord, error)
}

// CachePersister keeps the job list as one JSON array under a fixed cache key.
type CachePersister struct {
	cache cache.Cache
	key   string
}

func NewCachePersister(ca cache.Cache) *CachePersister {
	return &CachePersister{cache: ca, key: cache.JobListKey()}
}

func (p *CachePersister) Save(ctx context.Context, records []models.JobRecord) error {
	if records == nil {
		records = []models.JobRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding job list: %w", err)
	}
	if err := p.cache.Set(ctx, p.key, data, 0); err != nil {
		return fmt.Errorf("saving job list: %w", err)
	}
	return nil
}

// Load returns the saved list, or nil when nothing has been saved yet.
func (p *CachePersister) Load(ctx context.Context) ([]models.JobRecord, error) {
	data, found, err := p.cache.Get(ctx, p.key)
	if err != nil {
		return nil, fmt.Errorf("loading job list: %w", err)
	}
	if !found {
		return nil, nil
	}

	var records []models.JobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding job list: %w", err)
	}
	return records, nil
}

// Compile-time check that CachePersister implements Persister.
var _ Persister = (*CachePersister)(nil)
