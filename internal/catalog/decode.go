package catalog

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// PERSISTED DATA DECODING
// Previously persisted transformedData can be a full serialized catalog, a
// plain array produced by the field-mapping feature, or something we no
// longer recognize. Decoding is an explicit tagged union tried in priority
// order so the downstream decision tree is exhaustive.
// =============================================================================

// PersistedKind tags the decoded shape of persisted transformed data.
type PersistedKind string

const (
	PersistedFullCatalog  PersistedKind = "full_catalog"
	PersistedFieldMapped  PersistedKind = "field_mapped"
	PersistedUnrecognized PersistedKind = "unrecognized"
)

// PersistedData is the decoded persisted payload. Exactly one of Catalog
// (for PersistedFullCatalog) or Rows (for PersistedFieldMapped) is set.
type PersistedData struct {
	Kind    PersistedKind
	Catalog *UnifiedDataCatalog
	Rows    []map[string]any
}

// DecodePersisted classifies and decodes raw persisted transformed data.
// Malformed input is never an error: it decodes as PersistedUnrecognized
// and the caller falls back to a fresh transform.
func DecodePersisted(raw string) *PersistedData {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &PersistedData{Kind: PersistedUnrecognized}
	}

	// Full catalog: an object carrying catalogId, schema and records.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err == nil {
		if hasKey(probe, "catalogId") && hasKey(probe, "schema") && hasKey(probe, "records") {
			var cat UnifiedDataCatalog
			if err := json.Unmarshal([]byte(raw), &cat); err == nil && cat.CatalogID != "" {
				return &PersistedData{Kind: PersistedFullCatalog, Catalog: &cat}
			}
		}
		return &PersistedData{Kind: PersistedUnrecognized}
	}

	// Field-mapped data: a plain array of row objects.
	var rows []map[string]any
	if err := json.Unmarshal([]byte(raw), &rows); err == nil {
		return &PersistedData{Kind: PersistedFieldMapped, Rows: rows}
	}

	return &PersistedData{Kind: PersistedUnrecognized}
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}
