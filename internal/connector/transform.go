// Package connector implements the generic per-source-type transform
// routines: file content (CSV, JSON, plain text), relational database rows,
// and API payloads. Each routine materializes records under an optional
// cap while still reporting the true logical total.
package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/connector/httpclient"
	"github.com/nucleus/catalog-api/internal/source"
)

// Transformer dispatches transformation by source type. It implements
// catalog.SourceTransformer.
type Transformer struct {
	content source.ContentStore
	api     *httpclient.Client
}

// NewTransformer creates the generic transformer. api may be nil when no
// API sources are served.
func NewTransformer(content source.ContentStore, api *httpclient.Client) *Transformer {
	return &Transformer{content: content, api: api}
}

// Transform converts source-specific content into a unified catalog.
func (t *Transformer) Transform(ctx context.Context, ds *source.DataSource, opts catalog.TransformOptions) (*catalog.UnifiedDataCatalog, error) {
	switch ds.Type {
	case source.TypeDatabase:
		return t.transformDatabase(ctx, ds, opts)
	case source.TypeAPI:
		return t.transformAPI(ctx, ds, opts)
	default:
		return t.transformFiles(ctx, ds, opts)
	}
}

// transformFiles materializes records from the source's files. CSV files
// contribute one record per data row, JSON files one per array element,
// and anything else a single raw-text record.
func (t *Transformer) transformFiles(ctx context.Context, ds *source.DataSource, opts catalog.TransformOptions) (*catalog.UnifiedDataCatalog, error) {
	files := ds.Configuration.Files
	if len(files) == 0 {
		return catalog.EmptyCatalog(ds), nil
	}

	var records []catalog.UnifiedDataRecord
	totalRecords := 0

	for _, file := range files {
		remaining := 0
		if opts.MaxRecords > 0 {
			remaining = opts.MaxRecords - len(records)
			if remaining <= 0 {
				remaining = -1 // counting only, nothing left to materialize
			}
		}

		content, err := t.content.FileContent(ctx, file)
		if err != nil {
			return nil, err
		}

		values, total, originFormat, err := materializeFile(file, content, remaining)
		if err != nil {
			log.Printf("skipping file %q for source %s: %v", file.Name, ds.ID, err)
			continue
		}

		wrapped := catalog.WrapRecords(ds, file.Name, values, totalRecords, originFormat, "generic_transform")
		records = append(records, wrapped...)
		totalRecords += total
	}

	if records == nil {
		records = []catalog.UnifiedDataRecord{}
	}
	return catalog.NewCatalog(ds, records, totalRecords, &catalog.CatalogMetadata{
		TransformationMethod: "generic_transform",
	}), nil
}

// materializeFile converts one file's content into raw record values.
// max < 0 means count rows but materialize nothing; max == 0 means no cap.
func materializeFile(file source.FileDescriptor, content string, max int) (values []any, total int, originFormat string, err error) {
	switch {
	case file.IsCSV():
		values, total, err = parseCSV(content, max)
		return values, total, "csv", err

	case file.IsJSON():
		var parsed any
		if jsonErr := json.Unmarshal([]byte(content), &parsed); jsonErr != nil {
			return nil, 0, "json", fmt.Errorf("failed to parse %q as JSON: %w", file.Name, jsonErr)
		}
		elems, ok := parsed.([]any)
		if !ok {
			elems = []any{parsed}
		}
		total = len(elems)
		if max < 0 {
			return []any{}, total, "json", nil
		}
		if max > 0 && len(elems) > max {
			elems = elems[:max]
		}
		return elems, total, "json", nil

	default:
		// Unstructured content becomes a single record with the raw text.
		if max < 0 {
			return []any{}, 1, "text", nil
		}
		return []any{map[string]any{"content": content}}, 1, "text", nil
	}
}
