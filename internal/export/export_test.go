package export

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/nucleus/catalog-api/internal/blob"
	"github.com/nucleus/catalog-api/internal/catalog"
)

func exportCatalog(count int) *catalog.UnifiedDataCatalog {
	records := make([]catalog.UnifiedDataRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, catalog.UnifiedDataRecord{
			ID:          fmt.Sprintf("src-1_data.json_record_%d", i),
			SourceID:    "src-1",
			RecordIndex: i,
			Data:        map[string]any{"n": float64(i), "name": fmt.Sprintf("row %d", i)},
		})
	}
	schema := catalog.CatalogSchema{Fields: []catalog.FieldDescriptor{
		{Name: "n", Type: "number"},
		{Name: "name", Type: "string"},
	}}
	return &catalog.UnifiedDataCatalog{
		CatalogID:    "catalog-test",
		SourceID:     "src-1",
		TotalRecords: count,
		Schema:       schema,
		Records:      records,
	}
}

func TestExport_JSONL(t *testing.T) {
	store := blob.NewLocalStore(t.TempDir())
	exp := NewExporter(store, "catalog", "exports")
	ctx := context.Background()

	result, err := exp.Export(ctx, exportCatalog(3), FormatJSONL)
	if err != nil {
		t.Fatal(err)
	}

	if result.Records != 3 {
		t.Errorf("expected 3 records, got %d", result.Records)
	}
	if !strings.HasPrefix(result.URL, "minio://catalog/exports/src-1/catalog-test/") {
		t.Errorf("unexpected artifact URL %q", result.URL)
	}

	key := strings.TrimPrefix(result.URL, "minio://catalog/")
	data, err := store.GetObject(ctx, "catalog", key)
	if err != nil {
		t.Fatal(err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer gz.Close()

	var lines int
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		var rec catalog.UnifiedDataRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not a record: %v", lines, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	if lines != 3 {
		t.Errorf("expected 3 JSONL lines, got %d", lines)
	}
}

func TestExport_Parquet(t *testing.T) {
	store := blob.NewLocalStore(t.TempDir())
	exp := NewExporter(store, "catalog", "exports")
	ctx := context.Background()

	result, err := exp.Export(ctx, exportCatalog(5), FormatParquet)
	if err != nil {
		t.Fatal(err)
	}
	if result.Records != 5 {
		t.Errorf("expected 5 records, got %d", result.Records)
	}
	if result.Bytes == 0 {
		t.Error("expected a non-empty artifact")
	}

	key := strings.TrimPrefix(result.URL, "minio://catalog/")
	data, err := store.GetObject(ctx, "catalog", key)
	if err != nil {
		t.Fatal(err)
	}
	// Parquet files start and end with the PAR1 magic.
	if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Error("artifact is not a parquet file")
	}
}

func TestExport_ParquetRequiresSchema(t *testing.T) {
	store := blob.NewLocalStore(t.TempDir())
	exp := NewExporter(store, "catalog", "exports")

	cat := exportCatalog(1)
	cat.Schema = catalog.CatalogSchema{}
	if _, err := exp.Export(context.Background(), cat, FormatParquet); err == nil {
		t.Error("expected an error for a schemaless catalog")
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	store := blob.NewLocalStore(t.TempDir())
	exp := NewExporter(store, "catalog", "exports")

	if _, err := exp.Export(context.Background(), exportCatalog(1), "xml"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestProjectRow(t *testing.T) {
	schema := catalog.CatalogSchema{Fields: []catalog.FieldDescriptor{
		{Name: "name", Type: "string"},
		{Name: "count", Type: "number"},
		{Name: "tags", Type: "array"},
	}}
	rec := catalog.UnifiedDataRecord{Data: map[string]any{
		"name":  "ada",
		"count": float64(2),
		"tags":  []any{"a", "b"},
	}}

	row := projectRow(rec, schema)
	if row["name"] != "ada" || row["count"] != float64(2) {
		t.Errorf("scalar fields must pass through: %+v", row)
	}
	if row["tags"] != `["a","b"]` {
		t.Errorf("complex values serialize as JSON strings, got %v", row["tags"])
	}
}
