package store

import (
	"context"
	"os"
	"testing"
)

// Integration test against a real database. Set CATALOG_TEST_DATABASE_URL
// to run; the data_sources table must already be migrated.
func TestPostgresStore_Integration(t *testing.T) {
	databaseURL := os.Getenv("CATALOG_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("CATALOG_TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	st, err := NewPostgresStore(ctx, databaseURL)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ds, err := st.GetDataSource(ctx, "does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	if ds != nil {
		t.Errorf("expected (nil, nil) for a missing data source, got %+v", ds)
	}

	state, err := st.GetTransformState(ctx, "does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	if state.HasData() {
		t.Error("missing rows must not report persisted data")
	}
}

func TestTransformState_HasData(t *testing.T) {
	var nilState *TransformState
	if nilState.HasData() {
		t.Error("nil state has no data")
	}
	if (&TransformState{}).HasData() {
		t.Error("empty state has no data")
	}
}
