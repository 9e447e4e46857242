package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/uhppoted/db-sync-sheets/config"
	"github.com/uhppoted/db-sync-sheets/errs"
	"github.com/uhppoted/db-sync-sheets/source"
)

// Destination replaces the contents of one worksheet per table.
type Destination struct {
	google           *gsheets.Service
	spreadsheet      string
	prefix           string
	schema           string
	valueInputOption string
	batchRows        int
	log              *zap.Logger
}

// NewDestination returns a Destination for the configured spreadsheet.
func NewDestination(google *gsheets.Service, cfg *config.Config, logger *zap.Logger) *Destination {
	if logger == nil {
		logger = zap.NewNop()
	}

	option := cfg.ValueInputOption
	if option == "" {
		option = config.RAW
	}

	return &Destination{
		google:           google,
		spreadsheet:      cfg.SpreadsheetID,
		prefix:           cfg.SheetPrefix,
		schema:           cfg.DefaultSchema(),
		valueInputOption: option,
		batchRows:        cfg.WriteBatchRows,
		log:              logger,
	}
}

// Check verifies that the spreadsheet exists and is accessible with the
// service credentials. Any failure is a configuration error, so that a bad
// spreadsheet ID or unusable credentials fail the run before any table is
// touched.
func (d *Destination) Check(ctx context.Context) error {
	spreadsheet, err := getSpreadsheet(d.google, d.spreadsheet, ctx)
	if err != nil {
		return errs.Wrap(err, errs.Config, fmt.Sprintf("unable to open spreadsheet %v", d.spreadsheet))
	}

	d.log.Debug("opened spreadsheet", zap.String("spreadsheet", spreadsheet.SpreadsheetId), zap.Int("worksheets", len(spreadsheet.Sheets)))

	return nil
}

// Resolve ensures an empty worksheet exists for the table and returns its
// title. An existing worksheet keeps its sheet ID: its values are cleared and
// the grid is resized to exactly fit the table (header plus rows), which drops
// any stale rows and columns. A missing worksheet is added with that size.
func (d *Destination) Resolve(ctx context.Context, table *source.Table) (string, error) {
	title := Title(table.Ref, d.prefix, d.schema)
	op := fmt.Sprintf("resolve worksheet '%v'", title)
	rows, cols := size(table)

	spreadsheet, err := getSpreadsheet(d.google, d.spreadsheet, ctx)
	if err != nil {
		return "", errs.Classify(err, op)
	}

	sheet := getSheet(spreadsheet, title)
	if sheet == nil {
		if _, err := batchUpdate(d.google, d.spreadsheet, []*gsheets.Request{addSheet(title, rows, cols)}, ctx); err != nil {
			return "", errs.Classify(err, op)
		}

		d.log.Debug("added worksheet", zap.String("worksheet", title), zap.Int64("rows", rows), zap.Int64("columns", cols))

		return title, nil
	}

	if err := clear(d.google, d.spreadsheet, []string{quote(title)}, ctx); err != nil {
		return "", errs.Classify(err, op)
	}

	if grid := sheet.Properties.GridProperties; grid != nil && grid.FrozenRowCount >= rows {
		rows = grid.FrozenRowCount + 1
	}

	if grid := sheet.Properties.GridProperties; grid != nil && grid.FrozenColumnCount >= cols {
		cols = grid.FrozenColumnCount + 1
	}

	if _, err := batchUpdate(d.google, d.spreadsheet, []*gsheets.Request{resize(sheet.Properties.SheetId, rows, cols)}, ctx); err != nil {
		return "", errs.Classify(err, op)
	}

	d.log.Debug("cleared worksheet",
		zap.String("worksheet", title),
		zap.Int64("sheet-id", sheet.Properties.SheetId),
		zap.Int64("rows", rows),
		zap.Int64("columns", cols))

	return title, nil
}

// Write stores the header row and data rows from A1 of the worksheet. With
// write batching enabled the rows are written in successive blocks of at most
// batchRows rows, the first block including the header.
func (d *Destination) Write(ctx context.Context, title string, columns []string, rows [][]any) error {
	op := fmt.Sprintf("write worksheet '%v'", title)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, header)
	values = append(values, rows...)

	for _, block := range blocks(values, d.batchRows) {
		vr := gsheets.ValueRange{
			Range:  A1(title, block.row),
			Values: block.values,
		}

		if _, err := d.google.Spreadsheets.Values.Update(d.spreadsheet, vr.Range, &vr).
			ValueInputOption(d.valueInputOption).
			Context(ctx).
			Do(); err != nil {
			return errs.Classify(err, op)
		}

		d.log.Debug("wrote rows", zap.String("worksheet", title), zap.String("range", vr.Range), zap.Int("rows", len(block.values)))
	}

	return nil
}

type block struct {
	row    int
	values [][]any
}

// blocks splits the header+data values into write blocks. The header counts
// towards the first block so that every block is at most n rows of data plus
// (for the first block only) the header.
func blocks(values [][]any, n int) []block {
	if n <= 0 || len(values) <= n+1 {
		return []block{{row: 1, values: values}}
	}

	list := []block{{row: 1, values: values[:n+1]}}
	for start := n + 1; start < len(values); start += n {
		end := start + n
		if end > len(values) {
			end = len(values)
		}

		list = append(list, block{row: start + 1, values: values[start:end]})
	}

	return list
}

func size(table *source.Table) (int64, int64) {
	rows := int64(len(table.Rows) + 1)
	cols := int64(len(table.Columns))
	if cols < 1 {
		cols = 1
	}

	return rows, cols
}
