package sheets

import (
	"testing"

	"github.com/uhppoted/db-sync-sheets/source"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		ref      source.TableRef
		prefix   string
		schema   string
		expected string
	}{
		{source.TableRef{Schema: "public", Name: "users"}, "", "public", "users"},
		{source.TableRef{Schema: "sales", Name: "invoices"}, "", "public", "sales.invoices"},
		{source.TableRef{Schema: "public", Name: "users"}, "db_", "public", "db_users"},
		{source.TableRef{Schema: "sales", Name: "invoices"}, "db_", "public", "db_sales.invoices"},
		{source.TableRef{Schema: "sales", Name: "invoices"}, "", "sales", "invoices"},
		{source.TableRef{Schema: "public", Name: "users"}, "", "sales", "public.users"},
	}

	for _, tt := range tests {
		if title := Title(tt.ref, tt.prefix, tt.schema); title != tt.expected {
			t.Errorf("Incorrect title for %v (prefix:'%v', schema:%v)\n   expected: %v\n   got:      %v", tt.ref, tt.prefix, tt.schema, tt.expected, title)
		}
	}
}

func TestTitleIsDeterministic(t *testing.T) {
	ref := source.TableRef{Schema: "sales", Name: "invoices"}

	if Title(ref, "x_", "public") != Title(ref, "x_", "public") {
		t.Errorf("Expected identical titles for identical inputs")
	}
}

func TestA1(t *testing.T) {
	tests := map[string]string{
		"users":          "'users'!A1",
		"sales.invoices": "'sales.invoices'!A1",
		"O'Brien":        "'O''Brien'!A1",
		"two words":      "'two words'!A1",
	}

	for title, expected := range tests {
		if a1 := A1(title, 1); a1 != expected {
			t.Errorf("Incorrect A1 range for '%v' - expected:%v, got:%v", title, expected, a1)
		}
	}

	if a1 := A1("users", 1002); a1 != "'users'!A1002" {
		t.Errorf("Incorrect A1 range - expected:%v, got:%v", "'users'!A1002", a1)
	}
}
