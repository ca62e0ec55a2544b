package sheet

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheetStore is the concrete RowStore backed by the Google Sheets API.
// All operations target the first worksheet of the spreadsheet, resolved
// once at construction time.
type GoogleSheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetTitle    string
	sheetID       int64
}

// NewGoogleSheetStore builds a store for the given spreadsheet and resolves
// its first worksheet.
func NewGoogleSheetStore(ctx context.Context, svc *sheets.Service, spreadsheetID string) (*GoogleSheetStore, error) {
	meta, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("NewGoogleSheetStore: fetching spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("NewGoogleSheetStore: spreadsheet %s has no worksheets", spreadsheetID)
	}

	props := meta.Sheets[0].Properties
	return &GoogleSheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetTitle:    props.Title,
		sheetID:       props.SheetId,
	}, nil
}

// FindSpreadsheetID looks up a spreadsheet by exact name via the Drive API.
// The service account must have the file shared with it for the lookup to
// see anything.
func FindSpreadsheetID(ctx context.Context, svc *drive.Service, name string) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`),
	)

	list, err := svc.Files.List().Q(query).Fields("files(id, name)").PageSize(2).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("FindSpreadsheetID: listing files: %w", err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("FindSpreadsheetID: no spreadsheet named %q visible to this account", name)
	}

	return list.Files[0].Id, nil
}

// SpreadsheetID returns the ID of the spreadsheet this store writes to.
func (s *GoogleSheetStore) SpreadsheetID() string {
	return s.spreadsheetID
}

// ReadAllRows returns every row of the worksheet.
func (s *GoogleSheetStore) ReadAllRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.quotedTitle()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ReadAllRows: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadColumn returns a single column, top to bottom.
func (s *GoogleSheetStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := columnName(col)
	rng := fmt.Sprintf("%s!%s:%s", s.quotedTitle(), letter, letter)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		MajorDimension("COLUMNS").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ReadColumn: column %s: %w", letter, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		values = append(values, fmt.Sprint(cell))
	}
	return values, nil
}

// InsertRowAt inserts a blank row at index, then fills it with values.
func (s *GoogleSheetStore) InsertRowAt(ctx context.Context, index int, values []string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index - 1),
					EndIndex:   int64(index),
				},
				InheritFromBefore: false,
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("InsertRowAt: inserting row %d: %w", index, err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	rng := fmt.Sprintf("%s!A%d", s.quotedTitle(), index)
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("InsertRowAt: writing row %d: %w", index, err)
	}
	return nil
}

// AppendRow adds a row after the last row with data.
func (s *GoogleSheetStore) AppendRow(ctx context.Context, values []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.quotedTitle(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("AppendRow: %w", err)
	}
	return nil
}

// UpdateCell overwrites a single cell.
func (s *GoogleSheetStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", s.quotedTitle(), columnName(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}

	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("UpdateCell: %s: %w", rng, err)
	}
	return nil
}

// quotedTitle wraps the worksheet title in single quotes so titles with
// spaces or special characters form valid A1 ranges.
func (s *GoogleSheetStore) quotedTitle() string {
	return "'" + strings.ReplaceAll(s.sheetTitle, "'", "''") + "'"
}

// columnName converts a 1-based column number to its letter form,
// e.g. 1 -> A, 27 -> AA.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
