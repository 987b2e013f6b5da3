// Package store persists data-source entities and their transformed
// catalog state. The catalog service reads and writes through the Store
// interface; the postgres implementation is the production backend and the
// memory implementation backs tests.
package store

import (
	"context"
	"database/sql"

	"github.com/nucleus/catalog-api/internal/source"
)

// TransformState is the persisted transformation state of a data source.
// TransformedData holds the JSON-serialized catalog snapshot (or the
// field-mapped array written by the field-mapping feature). It does not
// auto-invalidate; freshness is the caller's decision.
type TransformState struct {
	TransformedData         sql.NullString
	TransformedAt           sql.NullTime
	RecordCount             sql.NullInt64
	TransformationAppliedAt sql.NullTime
}

// HasData reports whether any transformed data is persisted.
func (s *TransformState) HasData() bool {
	return s != nil && s.TransformedData.Valid && s.TransformedData.String != ""
}

// Store is the persistence surface the catalog service depends on.
// Lookup methods return (nil, nil) when the row does not exist.
type Store interface {
	GetDataSource(ctx context.Context, id string) (*source.DataSource, error)
	GetTransformState(ctx context.Context, id string) (*TransformState, error)
	SaveTransformState(ctx context.Context, id string, transformedData string, recordCount int) error
}
