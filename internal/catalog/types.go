// Package catalog implements the unified data catalog: transformation of
// heterogeneous source content into a flat, paginated, schema-annotated
// record set, plus the cache/freshness decision procedure over previously
// persisted catalogs.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// POLICY CONSTANTS
// =============================================================================

const (
	// DefaultPageSize is applied when a request omits pageSize.
	DefaultPageSize = 100
	// MaxPageSize caps pageSize regardless of what the client asked for.
	MaxPageSize = 1000
	// FreshTransformRecordCap bounds record materialization for fresh
	// transforms when the caller did not request the full set.
	FreshTransformRecordCap = 1000
	// FullLoadThreshold is the dataset size under which an elided catalog
	// is re-transformed without any record cap.
	FullLoadThreshold = 1000
	// PersistRecordLimit is the record count above which only catalog
	// metadata is persisted, to bound serialized payload size.
	PersistRecordLimit = 10000
	// DownloadHintThreshold is the record count above which responses
	// surface a bulk-download URL.
	DownloadHintThreshold = 100
	// MaxFieldExamples caps the example values captured per field.
	MaxFieldExamples = 3
)

// =============================================================================
// CATALOG MODELS
// =============================================================================

// FieldDescriptor describes one inferred schema field.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // string, number, boolean, object, array, mixed
	Nullable bool   `json:"nullable"`
	Examples []any  `json:"examples,omitempty"`
}

// CatalogSchema is the inferred schema of a record set.
type CatalogSchema struct {
	Fields []FieldDescriptor `json:"fields"`
}

// CatalogSummary aggregates counts derived from the schema and record set.
type CatalogSummary struct {
	DataTypes   []string `json:"dataTypes"`
	RecordCount int      `json:"recordCount"`
	FieldCount  int      `json:"fieldCount"`
	SampleSize  int      `json:"sampleSize"`
}

// CatalogMetadata carries transformation provenance.
type CatalogMetadata struct {
	TransformationMethod string `json:"transformationMethod,omitempty"`

	// RecordsNotStored marks a persisted catalog whose records were elided
	// for size; SavedRecordCount then holds the authoritative total.
	RecordsNotStored bool `json:"recordsNotStored,omitempty"`
	SavedRecordCount int  `json:"savedRecordCount,omitempty"`

	MappedFieldCount   int      `json:"mappedFieldCount,omitempty"`
	UnmappedFieldCount int      `json:"unmappedFieldCount,omitempty"`
	ValidationErrors   []string `json:"validationErrors,omitempty"`
}

// RecordMetadata documents where a record came from and how it was extracted.
type RecordMetadata struct {
	OriginFormat     string    `json:"originFormat,omitempty"`
	SourceFile       string    `json:"sourceFile,omitempty"`
	ExtractedAt      time.Time `json:"extractedAt"`
	ProcessingMethod string    `json:"processingMethod,omitempty"`
	Confidence       float64   `json:"confidence,omitempty"`
}

// UnifiedDataRecord is a single normalized record within a catalog.
// RecordIndex is the absolute position in the full logical record set,
// not the position within a page or capped subset.
type UnifiedDataRecord struct {
	ID          string         `json:"id"`
	SourceID    string         `json:"sourceId"`
	SourceName  string         `json:"sourceName"`
	SourceType  string         `json:"sourceType"`
	RecordIndex int            `json:"recordIndex"`
	Data        any            `json:"data"`
	Metadata    RecordMetadata `json:"metadata"`
}

// UnifiedDataCatalog is the transformer's primary output. TotalRecords is
// the logical total of the source and may exceed len(Records) when a cap
// or elision applied.
type UnifiedDataCatalog struct {
	CatalogID    string              `json:"catalogId"`
	SourceID     string              `json:"sourceId"`
	SourceName   string              `json:"sourceName"`
	CreatedAt    time.Time           `json:"createdAt"`
	TotalRecords int                 `json:"totalRecords"`
	Schema       CatalogSchema       `json:"schema"`
	Records      []UnifiedDataRecord `json:"records"`
	Summary      CatalogSummary      `json:"summary"`
	Metadata     *CatalogMetadata    `json:"metadata,omitempty"`
}

// NewCatalogID creates a fresh opaque catalog identifier. IDs are not
// stable across re-transforms.
func NewCatalogID() string {
	return "catalog-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// RecordsElided reports whether the catalog's records were omitted when it
// was persisted.
func (c *UnifiedDataCatalog) RecordsElided() bool {
	if c.Metadata != nil && c.Metadata.RecordsNotStored {
		return true
	}
	return len(c.Records) == 0
}

// SavedTotal returns the authoritative record count of a persisted catalog:
// savedRecordCount when set, else totalRecords.
func (c *UnifiedDataCatalog) SavedTotal() int {
	if c.Metadata != nil && c.Metadata.SavedRecordCount > 0 {
		return c.Metadata.SavedRecordCount
	}
	return c.TotalRecords
}

// WithInferredSchema returns a copy of the catalog whose schema and summary
// are re-derived from its existing records. The original is not mutated.
func (c *UnifiedDataCatalog) WithInferredSchema() *UnifiedDataCatalog {
	out := *c
	out.Schema = InferSchema(c.Records)
	out.Summary = BuildSummary(out.Schema, c.TotalRecords, len(c.Records))
	return &out
}

// WithTotalRecords returns a copy of the catalog with the total overridden.
// The summary is rebuilt so its recordCount stays consistent.
func (c *UnifiedDataCatalog) WithTotalRecords(total int) *UnifiedDataCatalog {
	out := *c
	out.TotalRecords = total
	out.Summary = BuildSummary(out.Schema, total, len(out.Records))
	return &out
}

// MetadataOnly returns a copy of the catalog with records elided for
// persistence: empty records, recordsNotStored set, and the true total
// captured in savedRecordCount.
func (c *UnifiedDataCatalog) MetadataOnly() *UnifiedDataCatalog {
	out := *c
	out.Records = []UnifiedDataRecord{}

	meta := CatalogMetadata{}
	if c.Metadata != nil {
		meta = *c.Metadata
	}
	meta.RecordsNotStored = true
	meta.SavedRecordCount = c.TotalRecords
	out.Metadata = &meta
	return &out
}
