// Package tsv implements a dry-run destination that writes each table to a
// tab separated file instead of a worksheet.
package tsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/uhppoted/db-sync-sheets/config"
	"github.com/uhppoted/db-sync-sheets/errs"
	"github.com/uhppoted/db-sync-sheets/sheets"
	"github.com/uhppoted/db-sync-sheets/source"
)

// Destination writes <dir>/<worksheet title>.tsv for each table.
type Destination struct {
	dir    string
	prefix string
	schema string
	log    *zap.Logger
}

func NewDestination(dir string, cfg *config.Config, logger *zap.Logger) *Destination {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Destination{
		dir:    dir,
		prefix: cfg.SheetPrefix,
		schema: cfg.DefaultSchema(),
		log:    logger,
	}
}

// Resolve creates (or truncates) the TSV file for the table and returns the
// worksheet title the table would have been written to.
func (d *Destination) Resolve(ctx context.Context, table *source.Table) (string, error) {
	title := sheets.Title(table.Ref, d.prefix, d.schema)

	if err := os.MkdirAll(d.dir, 0750); err != nil {
		return "", errs.Classify(err, fmt.Sprintf("create dry-run directory %v", d.dir))
	}

	f, err := os.Create(d.path(title))
	if err != nil {
		return "", errs.Classify(err, fmt.Sprintf("create %v", d.path(title)))
	}

	return title, f.Close()
}

func (d *Destination) Write(ctx context.Context, title string, columns []string, rows [][]any) error {
	file := d.path(title)

	f, err := os.Create(file)
	if err != nil {
		return errs.Classify(err, fmt.Sprintf("create %v", file))
	}

	defer f.Close()

	if err := toTSV(f, columns, rows); err != nil {
		return errs.Classify(err, fmt.Sprintf("write %v", file))
	}

	if err := f.Close(); err != nil {
		return errs.Classify(err, fmt.Sprintf("write %v", file))
	}

	d.log.Info("dry run", zap.String("worksheet", title), zap.String("file", file), zap.Int("rows", len(rows)))

	return nil
}

func (d *Destination) path(title string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(title)

	return filepath.Join(d.dir, name+".tsv")
}

// toTSV writes the header and rows as tab separated values. Fields containing
// a tab, quote or newline are quoted CSV style.
func toTSV(f io.Writer, header []string, rows [][]any) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
