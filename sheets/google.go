package sheets

import (
	"context"

	"google.golang.org/api/googleapi"
	gsheets "google.golang.org/api/sheets/v4"
)

func getSpreadsheet(google *gsheets.Service, id string, ctx context.Context) (*gsheets.Spreadsheet, error) {
	return google.Spreadsheets.
		Get(id).
		Fields(googleapi.Field("spreadsheetId,sheets.properties")).
		Context(ctx).
		Do()
}

func getSheet(spreadsheet *gsheets.Spreadsheet, title string) *gsheets.Sheet {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet
		}
	}

	return nil
}

func clear(google *gsheets.Service, spreadsheet string, ranges []string, ctx context.Context) error {
	rq := gsheets.BatchClearValuesRequest{
		Ranges: ranges,
	}

	if _, err := google.Spreadsheets.Values.BatchClear(spreadsheet, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

func batchUpdate(google *gsheets.Service, spreadsheet string, requests []*gsheets.Request, ctx context.Context) (*gsheets.BatchUpdateSpreadsheetResponse, error) {
	rq := gsheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	return google.Spreadsheets.BatchUpdate(spreadsheet, &rq).Context(ctx).Do()
}

// resize sets the grid of an existing worksheet to exactly rows x cols. The
// sheet ID is always sent since the first worksheet of a spreadsheet is
// usually sheet 0.
func resize(sheetId, rows, cols int64) *gsheets.Request {
	return &gsheets.Request{
		UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
			Properties: &gsheets.SheetProperties{
				SheetId:         sheetId,
				ForceSendFields: []string{"SheetId"},
				GridProperties: &gsheets.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
			Fields: "gridProperties(rowCount,columnCount)",
		},
	}
}

func addSheet(title string, rows, cols int64) *gsheets.Request {
	return &gsheets.Request{
		AddSheet: &gsheets.AddSheetRequest{
			Properties: &gsheets.SheetProperties{
				Title: title,
				GridProperties: &gsheets.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
		},
	}
}
