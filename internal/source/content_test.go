package source

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nucleus/catalog-api/internal/blob"
)

func TestFileDescriptor_FormatDetection(t *testing.T) {
	tests := []struct {
		file FileDescriptor
		json bool
		csv  bool
	}{
		{FileDescriptor{Name: "data.json"}, true, false},
		{FileDescriptor{Name: "DATA.JSON"}, true, false},
		{FileDescriptor{Name: "blob", MimeType: "application/json"}, true, false},
		{FileDescriptor{Name: "rows.csv"}, false, true},
		{FileDescriptor{Name: "blob", MimeType: "text/csv"}, false, true},
		{FileDescriptor{Name: "notes.txt"}, false, false},
	}
	for _, tt := range tests {
		if got := tt.file.IsJSON(); got != tt.json {
			t.Errorf("%s: IsJSON() = %t, want %t", tt.file.Name, got, tt.json)
		}
		if got := tt.file.IsCSV(); got != tt.csv {
			t.Errorf("%s: IsCSV() = %t, want %t", tt.file.Name, got, tt.csv)
		}
	}
}

func TestParseConfiguration(t *testing.T) {
	raw := json.RawMessage(`{"files":[{"name":"a.json","content":"[]"}],"url":"https://api.example.com","resultsKey":"rows"}`)
	cfg, err := ParseConfiguration(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Files) != 1 || cfg.Files[0].Name != "a.json" {
		t.Errorf("unexpected files: %+v", cfg.Files)
	}
	if cfg.URL != "https://api.example.com" || cfg.ResultsKey != "rows" {
		t.Errorf("unexpected api settings: %+v", cfg)
	}

	empty, err := ParseConfiguration(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Files) != 0 {
		t.Errorf("empty payload must yield an empty configuration, got %+v", empty)
	}

	if _, err := ParseConfiguration(json.RawMessage(`{broken`)); err == nil {
		t.Error("expected an error for malformed configuration")
	}
}

func TestBlobContentStore_InlineContent(t *testing.T) {
	cs := NewBlobContentStore(nil, "")

	content, err := cs.FileContent(context.Background(), FileDescriptor{Name: "a.json", Content: `[1,2]`})
	if err != nil {
		t.Fatal(err)
	}
	if content != `[1,2]` {
		t.Errorf("unexpected content %q", content)
	}

	if _, err := cs.FileContent(context.Background(), FileDescriptor{Name: "b.json"}); err == nil {
		t.Error("expected an error when neither inline content nor a storage key exists")
	}
}

func TestBlobContentStore_StorageKey(t *testing.T) {
	store := blob.NewLocalStore(t.TempDir())
	ctx := context.Background()
	if err := store.PutObject(ctx, "catalog", "sources/src-1/a.json", []byte(`[3,4]`)); err != nil {
		t.Fatal(err)
	}

	cs := NewBlobContentStore(store, "catalog")
	content, err := cs.FileContent(ctx, FileDescriptor{Name: "a.json", StorageKey: "sources/src-1/a.json"})
	if err != nil {
		t.Fatal(err)
	}
	if content != `[3,4]` {
		t.Errorf("unexpected content %q", content)
	}
}
