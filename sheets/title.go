// Package sheets writes tables to the worksheets of a Google Sheets spreadsheet,
// one worksheet per table.
package sheets

import (
	"fmt"
	"strings"

	"github.com/uhppoted/db-sync-sheets/source"
)

// Title returns the worksheet title for a table. Tables in the default schema
// are titled by table name alone, everything else by 'schema.table'. The prefix
// is prepended in both cases.
func Title(ref source.TableRef, prefix, defaultSchema string) string {
	if ref.Schema == defaultSchema {
		return prefix + ref.Name
	}

	return fmt.Sprintf("%v%v.%v", prefix, ref.Schema, ref.Name)
}

// A1 returns the A1 notation for a cell on the named worksheet, quoting the
// worksheet title e.g. 'O''Brien'!A1.
func A1(title string, row int) string {
	return fmt.Sprintf("%v!A%d", quote(title), row)
}

func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
