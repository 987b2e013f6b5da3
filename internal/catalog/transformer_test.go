package catalog

import (
	"context"
	"testing"

	"github.com/nucleus/catalog-api/internal/source"
)

// fakeGeneric stands in for the per-source-type transform routine and
// counts invocations.
type fakeGeneric struct {
	calls    int
	lastOpts TransformOptions
	result   *UnifiedDataCatalog
	err      error
}

func (f *fakeGeneric) Transform(ctx context.Context, ds *source.DataSource, opts TransformOptions) (*UnifiedDataCatalog, error) {
	f.calls++
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return EmptyCatalog(ds), nil
}

func jsonFileSource(id, fileName, content string) *source.DataSource {
	return &source.DataSource{
		ID:   id,
		Name: "test source",
		Type: source.TypeFilesystem,
		Configuration: source.Configuration{
			Files: []source.FileDescriptor{{Name: fileName, MimeType: "application/json", Content: content}},
		},
	}
}

func TestTransform_JSONArray(t *testing.T) {
	ds := jsonFileSource("src-1", "users.json", `[{"name":"ada"},{"name":"grace"},{"name":"edsger"}]`)
	generic := &fakeGeneric{}
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), generic)

	cat, err := tr.Transform(context.Background(), ds, TransformOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if cat.TotalRecords != 3 || len(cat.Records) != 3 {
		t.Fatalf("expected 3/3 records, got %d/%d", len(cat.Records), cat.TotalRecords)
	}
	if generic.calls != 0 {
		t.Errorf("json-only source must not hit the generic path, got %d calls", generic.calls)
	}
	if cat.Records[0].ID != "src-1_users.json_record_0" {
		t.Errorf("unexpected record id %q", cat.Records[0].ID)
	}
	if cat.Records[2].RecordIndex != 2 {
		t.Errorf("expected absolute record index 2, got %d", cat.Records[2].RecordIndex)
	}
	if f := fieldByName(t, cat.Schema, "name"); f.Type != "string" {
		t.Errorf("expected inferred string field, got %s", f.Type)
	}
	if cat.Metadata == nil || cat.Metadata.TransformationMethod != "json_direct" {
		t.Errorf("expected json_direct provenance, got %+v", cat.Metadata)
	}
}

func TestTransform_JSONSingleObject(t *testing.T) {
	ds := jsonFileSource("src-1", "config.json", `{"env":"prod","debug":false}`)
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), &fakeGeneric{})

	cat, err := tr.Transform(context.Background(), ds, TransformOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cat.TotalRecords != 1 || len(cat.Records) != 1 {
		t.Fatalf("expected a single wrapped record, got %d/%d", len(cat.Records), cat.TotalRecords)
	}
}

func TestTransform_JSONCapKeepsTrueTotal(t *testing.T) {
	ds := jsonFileSource("src-1", "data.json", `[{"n":1},{"n":2},{"n":3},{"n":4},{"n":5}]`)
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), &fakeGeneric{})

	cat, err := tr.Transform(context.Background(), ds, TransformOptions{MaxRecords: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Records) != 2 {
		t.Fatalf("expected 2 materialized records, got %d", len(cat.Records))
	}
	if cat.TotalRecords != 5 {
		t.Errorf("capped run must report the true total, got %d", cat.TotalRecords)
	}
}

func TestTransform_MalformedJSONFallsBackToGeneric(t *testing.T) {
	ds := jsonFileSource("src-1", "broken.json", `{"unclosed":`)
	generic := &fakeGeneric{}
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), generic)

	_, err := tr.Transform(context.Background(), ds, TransformOptions{MaxRecords: 7})
	if err != nil {
		t.Fatal(err)
	}
	if generic.calls != 1 {
		t.Fatalf("expected fallback to the generic path, got %d calls", generic.calls)
	}
	if generic.lastOpts.MaxRecords != 7 {
		t.Errorf("options must pass through to the generic path, got %+v", generic.lastOpts)
	}
}

func TestTransform_EmptyFilesystemSource(t *testing.T) {
	ds := &source.DataSource{ID: "src-empty", Name: "empty", Type: source.TypeFilesystem}
	generic := &fakeGeneric{}
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), generic)

	cat, err := tr.Transform(context.Background(), ds, TransformOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cat.TotalRecords != 0 || len(cat.Records) != 0 {
		t.Errorf("expected an empty catalog, got %d/%d", len(cat.Records), cat.TotalRecords)
	}
	if generic.calls != 0 {
		t.Error("an empty filesystem source must not hit the generic path")
	}
}

func TestTransform_MixedFilesUseGenericPath(t *testing.T) {
	ds := &source.DataSource{
		ID:   "src-mixed",
		Type: source.TypeFilesystem,
		Configuration: source.Configuration{
			Files: []source.FileDescriptor{
				{Name: "a.json", Content: `[]`},
				{Name: "b.csv", Content: "x,y\n1,2\n"},
			},
		},
	}
	generic := &fakeGeneric{}
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), generic)

	if _, err := tr.Transform(context.Background(), ds, TransformOptions{}); err != nil {
		t.Fatal(err)
	}
	if generic.calls != 1 {
		t.Errorf("mixed file types must use the generic path, got %d calls", generic.calls)
	}
}

func TestTransform_APISourceAlwaysGeneric(t *testing.T) {
	// Even an API source configured with JSON files re-fetches through the
	// generic path so stale file snapshots are never served.
	ds := &source.DataSource{
		ID:   "src-api",
		Type: source.TypeAPI,
		Configuration: source.Configuration{
			URL:   "https://api.example.com/items",
			Files: []source.FileDescriptor{{Name: "snapshot.json", Content: `[{"n":1}]`}},
		},
	}
	generic := &fakeGeneric{}
	tr := NewTransformer(source.NewBlobContentStore(nil, ""), generic)

	if _, err := tr.Transform(context.Background(), ds, TransformOptions{}); err != nil {
		t.Fatal(err)
	}
	if generic.calls != 1 {
		t.Errorf("api sources must use the generic path, got %d calls", generic.calls)
	}
}

func TestFieldMappedCatalog(t *testing.T) {
	ds := &source.DataSource{ID: "src-fm", Name: "mapped", Type: source.TypeFilesystem, RecordCount: 12}
	rows := []map[string]any{
		{"name": "ada", "email": "ada@example.com"},
		{"name": "grace", "email": "grace@example.com"},
	}

	cat := FieldMappedCatalog(ds, rows)

	if cat.TotalRecords != 12 {
		t.Errorf("entity record count is authoritative, got %d", cat.TotalRecords)
	}
	if len(cat.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(cat.Records))
	}
	if cat.Records[0].ID != "src-fm_mapped_record_0" {
		t.Errorf("unexpected record id %q", cat.Records[0].ID)
	}
	if f := fieldByName(t, cat.Schema, "name"); f.Type != "string" {
		t.Errorf("expected string name field, got %s", f.Type)
	}
	if f := fieldByName(t, cat.Schema, "email"); f.Type != "string" {
		t.Errorf("expected string email field, got %s", f.Type)
	}
}

func TestFieldMappedCatalog_NoEntityCount(t *testing.T) {
	ds := &source.DataSource{ID: "src-fm", Type: source.TypeFilesystem}
	cat := FieldMappedCatalog(ds, []map[string]any{{"a": "x"}, {"a": "y"}, {"a": "z"}})
	if cat.TotalRecords != 3 {
		t.Errorf("expected row count as total when no entity count exists, got %d", cat.TotalRecords)
	}
}
