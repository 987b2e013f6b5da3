// Package export writes bulk-download artifacts for catalogs to the object
// store: Parquet when the inferred schema allows it, gzipped JSONL as the
// fallback.
package export

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/nucleus/catalog-api/internal/blob"
	"github.com/nucleus/catalog-api/internal/catalog"
)

// Supported artifact formats.
const (
	FormatParquet = "parquet"
	FormatJSONL   = "jsonl"
)

// Result describes a written artifact.
type Result struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
}

// Exporter writes catalog artifacts to an object store.
type Exporter struct {
	store      blob.ObjectStore
	bucket     string
	basePrefix string
}

// NewExporter creates an exporter writing under bucket/basePrefix.
func NewExporter(store blob.ObjectStore, bucket, basePrefix string) *Exporter {
	if basePrefix == "" {
		basePrefix = "exports"
	}
	return &Exporter{store: store, bucket: bucket, basePrefix: basePrefix}
}

// Export writes the catalog's materialized records in the given format and
// returns the artifact location.
func (e *Exporter) Export(ctx context.Context, cat *catalog.UnifiedDataCatalog, format string) (*Result, error) {
	if e.store == nil {
		return nil, fmt.Errorf("export storage is not configured")
	}
	if err := e.store.EnsureBucket(ctx, e.bucket); err != nil {
		return nil, err
	}

	switch format {
	case FormatParquet:
		return e.writeParquet(ctx, cat)
	case FormatJSONL, "":
		return e.writeJSONL(ctx, cat)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (e *Exporter) writeJSONL(ctx context.Context, cat *catalog.UnifiedDataCatalog) (*Result, error) {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	enc := json.NewEncoder(gz)
	for _, rec := range cat.Records {
		if err := enc.Encode(rec); err != nil {
			_ = gz.Close()
			return nil, fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
		}
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize artifact: %w", err)
	}

	key := e.artifactKey(cat, "records.jsonl.gz")
	if err := e.store.PutObject(ctx, e.bucket, key, buf.Bytes()); err != nil {
		return nil, err
	}
	return &Result{
		URL:     fmt.Sprintf("minio://%s/%s", e.bucket, key),
		Format:  FormatJSONL,
		Records: len(cat.Records),
		Bytes:   int64(buf.Len()),
	}, nil
}

// writeParquet writes all records into a single Parquet file using the
// catalog's inferred schema.
func (e *Exporter) writeParquet(ctx context.Context, cat *catalog.UnifiedDataCatalog) (*Result, error) {
	if len(cat.Schema.Fields) == 0 {
		return nil, fmt.Errorf("catalog %s has no schema fields to project", cat.CatalogID)
	}

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	schemaDef := buildParquetSchema(cat.Schema)
	pw, err := writer.NewJSONWriter(schemaDef, pfw, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var rows int
	for _, rec := range cat.Records {
		// JSONWriter consumes rows as JSON strings.
		row, err := json.Marshal(projectRow(rec, cat.Schema))
		if err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return nil, fmt.Errorf("failed to serialize record %s: %w", rec.ID, err)
		}
		if err := pw.Write(string(row)); err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return nil, fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
		rows++
	}
	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	_ = pfw.Close()

	key := e.artifactKey(cat, "records.parquet")
	if err := e.store.PutObject(ctx, e.bucket, key, buf.Bytes()); err != nil {
		return nil, err
	}
	return &Result{
		URL:     fmt.Sprintf("minio://%s/%s", e.bucket, key),
		Format:  FormatParquet,
		Records: rows,
		Bytes:   int64(buf.Len()),
	}, nil
}

func (e *Exporter) artifactKey(cat *catalog.UnifiedDataCatalog, name string) string {
	return strings.Join([]string{e.basePrefix, cat.SourceID, cat.CatalogID, name}, "/")
}

func buildParquetSchema(schema catalog.CatalogSchema) string {
	fields := make([]map[string]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, type=%s, repetitiontype=OPTIONAL", f.Name, parquetPhysicalType(f.Type)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetPhysicalType(fieldType string) string {
	switch fieldType {
	case "boolean":
		return "BOOLEAN"
	case "number":
		return "DOUBLE"
	default:
		return "BYTE_ARRAY"
	}
}

// projectRow flattens a record's payload onto the schema fields. Values of
// types parquet cannot carry directly are serialized as JSON strings.
func projectRow(rec catalog.UnifiedDataRecord, schema catalog.CatalogSchema) map[string]any {
	payload, _ := rec.Data.(map[string]any)
	row := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		var val any
		if payload != nil {
			val = payload[f.Name]
		}
		switch f.Type {
		case "boolean", "number":
			row[f.Name] = val
		case "string":
			if s, ok := val.(string); ok {
				row[f.Name] = s
			} else if val != nil {
				b, _ := json.Marshal(val)
				row[f.Name] = string(b)
			}
		default:
			if val != nil {
				b, _ := json.Marshal(val)
				row[f.Name] = string(b)
			}
		}
	}
	return row
}
