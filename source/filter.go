package source

import (
	"sort"
	"strings"
)

// Rules are the inclusion/exclusion rules applied to the discovered tables.
type Rules struct {
	IncludedSchemas       []string
	ExcludedSchemas       []string
	ExcludedTablePrefixes []string
	Tables                []string // 'schema.table', case-insensitive
}

// Filter returns the in-scope tables, sorted by schema and table name, without
// duplicates. The rules are applied in order: base tables only, included
// schemas, excluded schemas, excluded table prefixes and finally the explicit
// table selection.
func Filter(candidates []Candidate, rules Rules) []TableRef {
	included := set(rules.IncludedSchemas, false)
	excluded := set(rules.ExcludedSchemas, false)
	selected := set(rules.Tables, true)

	seen := map[TableRef]bool{}
	tables := []TableRef{}

	for _, c := range candidates {
		if !strings.EqualFold(c.Type, BASE_TABLE) {
			continue
		}

		if len(included) > 0 && !included[c.Schema] {
			continue
		}

		if len(excluded) > 0 && excluded[c.Schema] {
			continue
		}

		if hasPrefix(c.Name, rules.ExcludedTablePrefixes) {
			continue
		}

		ref := TableRef{Schema: c.Schema, Name: c.Name}
		if len(selected) > 0 && !selected[strings.ToLower(ref.String())] {
			continue
		}

		if !seen[ref] {
			seen[ref] = true
			tables = append(tables, ref)
		}
	}

	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Schema != tables[j].Schema {
			return tables[i].Schema < tables[j].Schema
		}

		return tables[i].Name < tables[j].Name
	})

	return tables
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}

	return false
}

func set(list []string, lowercase bool) map[string]bool {
	m := map[string]bool{}
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			if lowercase {
				v = strings.ToLower(v)
			}
			m[v] = true
		}
	}

	return m
}
