package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/nucleus/catalog-api/internal/source"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	sources map[string]*source.DataSource
	states  map[string]*TransformState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources: make(map[string]*source.DataSource),
		states:  make(map[string]*TransformState),
	}
}

// AddDataSource registers a data source.
func (m *MemoryStore) AddDataSource(ds *source.DataSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[ds.ID] = ds
}

// SetTransformState seeds persisted transform state for a source.
func (m *MemoryStore) SetTransformState(id string, state *TransformState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[id] = state
}

func (m *MemoryStore) GetDataSource(ctx context.Context, id string) (*source.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.sources[id]
	if !ok {
		return nil, nil
	}
	copied := *ds
	return &copied, nil
}

func (m *MemoryStore) GetTransformState(ctx context.Context, id string) (*TransformState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (m *MemoryStore) SaveTransformState(ctx context.Context, id string, transformedData string, recordCount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.states[id] = &TransformState{
		TransformedData:         sql.NullString{String: transformedData, Valid: true},
		TransformedAt:           sql.NullTime{Time: now, Valid: true},
		RecordCount:             sql.NullInt64{Int64: int64(recordCount), Valid: true},
		TransformationAppliedAt: sql.NullTime{Time: now, Valid: true},
	}
	return nil
}
