// Package source discovers, filters and reads the PostgreSQL tables to be synced.
package source

import (
	"fmt"
	"strings"
)

const BASE_TABLE = "BASE TABLE"

// TableRef identifies one source table (and implicitly one destination worksheet).
type TableRef struct {
	Schema string
	Name   string
}

// String returns schema.table
func (t TableRef) String() string {
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}

// Candidate is a row from information_schema.tables.
type Candidate struct {
	Schema string
	Name   string
	Type   string
}

// Table holds the columns and normalized rows of one table, as fetched.
type Table struct {
	Ref     TableRef
	Columns []string
	Rows    [][]any
}

// ParseTableRef parses a 'schema.table' string. A name without a schema is
// qualified with the default schema.
func ParseTableRef(s string, schema string) (TableRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TableRef{}, fmt.Errorf("invalid table name '%s'", s)
	}

	if ix := strings.Index(s, "."); ix >= 0 {
		if ix == 0 || ix == len(s)-1 {
			return TableRef{}, fmt.Errorf("invalid table name '%s' - expected something like 'public.users'", s)
		}

		return TableRef{Schema: s[:ix], Name: s[ix+1:]}, nil
	}

	return TableRef{Schema: schema, Name: s}, nil
}
