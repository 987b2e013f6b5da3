package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nucleus/catalog-api/internal/source"
	"github.com/nucleus/catalog-api/internal/store"
)

func TestDownload_JSONStreamsFullSet(t *testing.T) {
	ds := &source.DataSource{ID: "src-1", Type: source.TypeFilesystem}
	mem := store.NewMemoryStore()
	mem.AddDataSource(ds)

	mux := newTestServer(mem, &stubTransformer{result: testCatalog(ds.ID, 250)}, Options{})

	rec := doTransform(t, mux, "/data-sources/src-1/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body transformBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Records) != 250 {
		t.Errorf("download must stream the full record set, got %d", len(body.Records))
	}
}

func TestDownload_ArtifactFormatsNeedExporter(t *testing.T) {
	ds := &source.DataSource{ID: "src-1", Type: source.TypeFilesystem}
	mem := store.NewMemoryStore()
	mem.AddDataSource(ds)

	// The test server is built without an exporter.
	mux := newTestServer(mem, &stubTransformer{result: testCatalog(ds.ID, 3)}, Options{})

	rec := doTransform(t, mux, "/data-sources/src-1/download?format=parquet", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without export storage, got %d", rec.Code)
	}
}

func TestDownload_UnsupportedFormat(t *testing.T) {
	ds := &source.DataSource{ID: "src-1", Type: source.TypeFilesystem}
	mem := store.NewMemoryStore()
	mem.AddDataSource(ds)

	mux := newTestServer(mem, &stubTransformer{result: testCatalog(ds.ID, 3)}, Options{})

	rec := doTransform(t, mux, "/data-sources/src-1/download?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
