package connector

import (
	"context"
	"fmt"

	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/source"
)

// Result-array keys probed when an API returns an object instead of a
// top-level array.
var defaultResultsKeys = []string{"results", "data", "items", "records", "values"}

// transformAPI fetches the source's API payload and materializes records
// from it. The payload is fetched fresh on every call; API catalogs are
// never served from persisted state.
func (t *Transformer) transformAPI(ctx context.Context, ds *source.DataSource, opts catalog.TransformOptions) (*catalog.UnifiedDataCatalog, error) {
	cfg := ds.Configuration
	if cfg.URL == "" {
		return nil, fmt.Errorf("api source %s has no URL configured", ds.ID)
	}
	if t.api == nil {
		return nil, fmt.Errorf("api source %s requires an HTTP client, but none is configured", ds.ID)
	}

	var payload any
	if err := t.api.GetJSON(ctx, cfg.URL, cfg.Headers, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch api source %s: %w", ds.ID, err)
	}

	values := extractResults(payload, cfg.ResultsKey)
	total := len(values)
	if opts.MaxRecords > 0 && len(values) > opts.MaxRecords {
		values = values[:opts.MaxRecords]
	}

	records := catalog.WrapRecords(ds, "api_response", values, 0, "api", "api_fetch")
	return catalog.NewCatalog(ds, records, total, &catalog.CatalogMetadata{
		TransformationMethod: "api_fetch",
	}), nil
}

// extractResults locates the record array within an API payload: a
// top-level array, the configured results key, one of the conventional
// keys, or the whole payload as a single record.
func extractResults(payload any, resultsKey string) []any {
	if arr, ok := payload.([]any); ok {
		return arr
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return []any{payload}
	}
	if resultsKey != "" {
		if arr, ok := obj[resultsKey].([]any); ok {
			return arr
		}
	}
	for _, key := range defaultResultsKeys {
		if arr, ok := obj[key].([]any); ok {
			return arr
		}
	}
	return []any{payload}
}
