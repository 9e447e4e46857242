package tsv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uhppoted/db-sync-sheets/config"
	"github.com/uhppoted/db-sync-sheets/source"
)

func TestToTSV(t *testing.T) {
	expected := `id	name	balance	tags
1	Ada	10.50	"[""x"",""y""]"
2	Grace		{}
`

	var f strings.Builder

	header := []string{"id", "name", "balance", "tags"}
	rows := [][]any{
		{int32(1), "Ada", "10.50", `["x","y"]`},
		{int32(2), "Grace", "", "{}"},
	}

	if err := toTSV(&f, header, rows); err != nil {
		t.Fatalf("Unexpected error returned from toTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %s\n   got:      %s\n", expected, f.String())
	}
}

func TestToTSVWithEmptyTable(t *testing.T) {
	expected := "id\tname\n"

	var f strings.Builder

	if err := toTSV(&f, []string{"id", "name"}, nil); err != nil {
		t.Fatalf("Unexpected error returned from toTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %q\n   got:      %q\n", expected, f.String())
	}
}

func TestToTSVWithEmbeddedTabs(t *testing.T) {
	expected := "note\n\"a\tb\"\n"

	var f strings.Builder

	if err := toTSV(&f, []string{"note"}, [][]any{{"a\tb"}}); err != nil {
		t.Fatalf("Unexpected error returned from toTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %q\n   got:      %q\n", expected, f.String())
	}
}

func TestDestination(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dry-run")
	cfg := config.Config{IncludedSchemas: []string{"public"}, SheetPrefix: "db_"}
	d := NewDestination(dir, &cfg, nil)

	tables := []source.Table{
		{
			Ref:     source.TableRef{Schema: "public", Name: "users"},
			Columns: []string{"id", "name"},
			Rows:    [][]any{{int32(1), "Ada"}},
		},
		{
			Ref:     source.TableRef{Schema: "sales", Name: "invoices"},
			Columns: []string{"id"},
		},
	}

	expected := map[string]string{
		"db_users.tsv":          "id\tname\n1\tAda\n",
		"db_sales.invoices.tsv": "id\n",
	}

	for _, table := range tables {
		title, err := d.Resolve(context.Background(), &table)
		if err != nil {
			t.Fatalf("Unexpected error resolving %v (%v)", table.Ref, err)
		}

		if err := d.Write(context.Background(), title, table.Columns, table.Rows); err != nil {
			t.Fatalf("Unexpected error writing %v (%v)", table.Ref, err)
		}
	}

	for file, content := range expected {
		bytes, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			t.Fatalf("Error reading %v (%v)", file, err)
		}

		if string(bytes) != content {
			t.Errorf("Incorrect %v\n   expected: %q\n   got:      %q\n", file, content, string(bytes))
		}
	}
}

func TestDestinationReplacesFile(t *testing.T) {
	dir := t.TempDir()
	d := NewDestination(dir, &config.Config{IncludedSchemas: []string{"public"}}, nil)

	table := source.Table{
		Ref:     source.TableRef{Schema: "public", Name: "users"},
		Columns: []string{"id"},
		Rows:    [][]any{{1}, {2}, {3}},
	}

	for _, rows := range [][][]any{table.Rows, {{9}}} {
		title, err := d.Resolve(context.Background(), &table)
		if err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}

		if err := d.Write(context.Background(), title, table.Columns, rows); err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}
	}

	bytes, err := os.ReadFile(filepath.Join(dir, "users.tsv"))
	if err != nil {
		t.Fatalf("Error reading users.tsv (%v)", err)
	}

	if string(bytes) != "id\n9\n" {
		t.Errorf("Expected stale rows to be replaced, got %q", string(bytes))
	}
}
