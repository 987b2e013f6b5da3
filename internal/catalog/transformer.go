package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nucleus/catalog-api/internal/source"
)

// =============================================================================
// CATALOG TRANSFORMER
// =============================================================================

// TransformOptions bounds a transformation run. MaxRecords caps how many
// records are materialized in memory; zero means no cap. A capped run must
// still report the true logical total.
type TransformOptions struct {
	MaxRecords int
}

// SourceTransformer converts a data source's raw content into a catalog.
// The generic per-source-type routines (CSV, database rows, API payloads)
// implement this; so does the Transformer itself.
type SourceTransformer interface {
	Transform(ctx context.Context, ds *source.DataSource, opts TransformOptions) (*UnifiedDataCatalog, error)
}

// Transformer is the entry point for catalog transformation. Sources whose
// files are all JSON are parsed directly; everything else is delegated to
// the generic per-source-type routine.
type Transformer struct {
	content source.ContentStore
	generic SourceTransformer
}

// NewTransformer creates a Transformer. generic handles non-JSON-only
// sources (CSV files, database rows, API payloads).
func NewTransformer(content source.ContentStore, generic SourceTransformer) *Transformer {
	return &Transformer{content: content, generic: generic}
}

// Transform produces a catalog for the data source.
func (t *Transformer) Transform(ctx context.Context, ds *source.DataSource, opts TransformOptions) (*UnifiedDataCatalog, error) {
	files := ds.Configuration.Files

	if isJSONOnly(ds) {
		cat, err := t.transformJSON(ctx, ds, opts)
		if err == nil {
			return cat, nil
		}
		// Soft failure: fall through to the generic path.
		log.Printf("json transform for source %s failed, falling back to generic transform: %v", ds.ID, err)
	}

	if len(files) == 0 && ds.Type == source.TypeFilesystem {
		return EmptyCatalog(ds), nil
	}

	if t.generic == nil {
		return nil, fmt.Errorf("source %s requires the generic transform routine, but none is configured", ds.ID)
	}
	return t.generic.Transform(ctx, ds, opts)
}

// isJSONOnly reports whether every configured file is JSON and the source
// is not an API. API sources always go through the generic path so a
// refreshed payload is actually re-fetched.
func isJSONOnly(ds *source.DataSource) bool {
	if ds.Type == source.TypeAPI {
		return false
	}
	files := ds.Configuration.Files
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.IsJSON() {
			return false
		}
	}
	return true
}

// transformJSON parses the first JSON file directly. An array becomes one
// record per element; any other value is the single record.
func (t *Transformer) transformJSON(ctx context.Context, ds *source.DataSource, opts TransformOptions) (*UnifiedDataCatalog, error) {
	file := ds.Configuration.Files[0]
	content, err := t.content.FileContent(ctx, file)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %q as JSON: %w", file.Name, err)
	}

	values, ok := parsed.([]any)
	if !ok {
		values = []any{parsed}
	}

	totalRecords := len(values)
	if opts.MaxRecords > 0 && len(values) > opts.MaxRecords {
		values = values[:opts.MaxRecords]
	}

	records := WrapRecords(ds, file.Name, values, 0, "json", "json_direct")
	return NewCatalog(ds, records, totalRecords, &CatalogMetadata{
		TransformationMethod: "json_direct",
	}), nil
}

// =============================================================================
// CATALOG CONSTRUCTION HELPERS
// =============================================================================

// WrapRecords wraps raw values into UnifiedDataRecords. startIndex is the
// absolute position of the first value within the full logical record set,
// so capped or paged materialization keeps correct record indices.
func WrapRecords(ds *source.DataSource, fileName string, values []any, startIndex int, originFormat, method string) []UnifiedDataRecord {
	now := time.Now().UTC()
	records := make([]UnifiedDataRecord, 0, len(values))
	for i, value := range values {
		index := startIndex + i
		records = append(records, UnifiedDataRecord{
			ID:          fmt.Sprintf("%s_%s_record_%d", ds.ID, fileName, index),
			SourceID:    ds.ID,
			SourceName:  ds.Name,
			SourceType:  ds.Type,
			RecordIndex: index,
			Data:        value,
			Metadata: RecordMetadata{
				OriginFormat:     originFormat,
				SourceFile:       fileName,
				ExtractedAt:      now,
				ProcessingMethod: method,
			},
		})
	}
	return records
}

// NewCatalog assembles a catalog from wrapped records, inferring the schema
// over the materialized subset.
func NewCatalog(ds *source.DataSource, records []UnifiedDataRecord, totalRecords int, meta *CatalogMetadata) *UnifiedDataCatalog {
	schema := InferSchema(records)
	return &UnifiedDataCatalog{
		CatalogID:    NewCatalogID(),
		SourceID:     ds.ID,
		SourceName:   ds.Name,
		CreatedAt:    time.Now().UTC(),
		TotalRecords: totalRecords,
		Schema:       schema,
		Records:      records,
		Summary:      BuildSummary(schema, totalRecords, len(records)),
		Metadata:     meta,
	}
}

// EmptyCatalog is the catalog for a source with no content.
func EmptyCatalog(ds *source.DataSource) *UnifiedDataCatalog {
	return NewCatalog(ds, []UnifiedDataRecord{}, 0, &CatalogMetadata{
		TransformationMethod: "empty",
	})
}

// FieldMappedCatalog interprets persisted field-mapped rows as a catalog.
// The rows are used as records directly, the entity-level record count is
// preferred over the array length as the total, and the schema is inferred
// over all rows rather than a sample.
func FieldMappedCatalog(ds *source.DataSource, rows []map[string]any) *UnifiedDataCatalog {
	now := time.Now().UTC()
	records := make([]UnifiedDataRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, UnifiedDataRecord{
			ID:          fmt.Sprintf("%s_mapped_record_%d", ds.ID, i),
			SourceID:    ds.ID,
			SourceName:  ds.Name,
			SourceType:  ds.Type,
			RecordIndex: i,
			Data:        map[string]any(row),
			Metadata: RecordMetadata{
				OriginFormat:     "field_mapped",
				ExtractedAt:      now,
				ProcessingMethod: "field_mapped",
			},
		})
	}

	total := len(rows)
	if ds.RecordCount > 0 {
		total = ds.RecordCount
	}
	return NewCatalog(ds, records, total, &CatalogMetadata{
		TransformationMethod: "field_mapped",
	})
}
