package connector

import "testing"

func TestParseCSV_HeaderedRows(t *testing.T) {
	values, total, err := parseCSV("name,age\nada,36\ngrace,45\n", 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(values) != 2 {
		t.Fatalf("expected 2/2 rows, got %d/%d", len(values), total)
	}
	row := values[0].(map[string]any)
	if row["name"] != "ada" || row["age"] != "36" {
		t.Errorf("unexpected first row: %+v", row)
	}
}

func TestParseCSV_CapKeepsTrueTotal(t *testing.T) {
	values, total, err := parseCSV("n\n1\n2\n3\n4\n5\n", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 {
		t.Errorf("expected 2 materialized rows, got %d", len(values))
	}
	if total != 5 {
		t.Errorf("capped parse must still count all rows, got %d", total)
	}
}

func TestParseCSV_CountOnly(t *testing.T) {
	values, total, err := parseCSV("n\n1\n2\n3\n", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 0 {
		t.Errorf("count-only parse materializes nothing, got %d", len(values))
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
}

func TestParseCSV_ShortRowsPadded(t *testing.T) {
	values, _, err := parseCSV("a,b,c\n1,2\n", 0)
	if err != nil {
		t.Fatal(err)
	}
	row := values[0].(map[string]any)
	if row["c"] != nil {
		t.Errorf("missing trailing fields pad with null, got %v", row["c"])
	}
	if row["a"] != "1" || row["b"] != "2" {
		t.Errorf("unexpected row: %+v", row)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	values, total, err := parseCSV("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(values) != 0 {
		t.Errorf("expected no rows, got %d/%d", len(values), total)
	}
}
