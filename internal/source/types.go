// Package source defines the data-source domain types consumed by the
// catalog transformation pipeline. A DataSource is owned by the metadata
// store; this package only models the shape the transformer reads.
package source

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source type identifiers.
const (
	TypeFilesystem      = "filesystem"
	TypeDatabase        = "database"
	TypeAPI             = "api"
	TypeJSONTransformed = "json_transformed"
)

// FileDescriptor describes a single file attached to a data source.
// Content is inline when small; larger payloads are referenced by
// StorageKey and resolved against the object store.
type FileDescriptor struct {
	Name       string `json:"name"`
	MimeType   string `json:"mimeType,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Content    string `json:"content,omitempty"`
	StorageKey string `json:"storageKey,omitempty"`
}

// IsJSON reports whether the file is JSON by declared MIME type or extension.
func (f FileDescriptor) IsJSON() bool {
	if strings.Contains(strings.ToLower(f.MimeType), "json") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".json")
}

// IsCSV reports whether the file is CSV by declared MIME type or extension.
func (f FileDescriptor) IsCSV() bool {
	if strings.Contains(strings.ToLower(f.MimeType), "csv") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".csv")
}

// Configuration is the per-source connection payload. Only the fields
// relevant to the configured source type are populated.
type Configuration struct {
	// File-backed sources.
	Files []FileDescriptor `json:"files,omitempty"`

	// Database sources.
	ConnectionString string `json:"connectionString,omitempty"`
	Table            string `json:"table,omitempty"`
	Query            string `json:"query,omitempty"`

	// API sources.
	URL        string            `json:"url,omitempty"`
	ResultsKey string            `json:"resultsKey,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`

	Extras map[string]any `json:"extras,omitempty"`
}

// DataSource is the catalog transformer's view of a registered source.
type DataSource struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Configuration Configuration `json:"configuration"`

	// RecordCount is the entity-level count maintained by the metadata
	// store. It survives field-mapping transforms that drop or merge rows,
	// so it is preferred over derived counts where both exist.
	RecordCount int `json:"recordCount,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ParseConfiguration decodes a raw configuration payload as stored by the
// metadata store. An empty payload yields an empty configuration.
func ParseConfiguration(raw json.RawMessage) (Configuration, error) {
	var cfg Configuration
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse source configuration: %w", err)
	}
	return cfg, nil
}
