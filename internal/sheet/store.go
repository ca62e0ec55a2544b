package sheet

import "context"

// RowStore defines the worksheet operations the upsert needs.
// This interface enables mocking and testing of spreadsheet operations.
// Rows and columns are 1-based, matching how spreadsheets number them.
type RowStore interface {
	// ReadAllRows returns every row of the worksheet. Trailing empty
	// rows and cells are not included.
	ReadAllRows(ctx context.Context) ([][]string, error)

	// ReadColumn returns the values of a single column, top to bottom,
	// up to the last non-empty cell.
	ReadColumn(ctx context.Context, col int) ([]string, error)

	// InsertRowAt inserts a new row at the given position, shifting
	// existing rows down, and fills it with values.
	InsertRowAt(ctx context.Context, index int, values []string) error

	// AppendRow adds a row after the last row with data.
	AppendRow(ctx context.Context, values []string) error

	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
}
