package sheet

import (
	"context"
	"fmt"
	"slices"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
)

// Header is the expected first row of the shared worksheet. Column order
// matches invoice.Record.Fields.
var Header = []string{"Invoice Number", "Customer Name", "Gross Price", "Tax", "Total Price"}

// Actions reported by Upsert.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
)

// Upsert writes rec into the worksheet, keyed by its invoice number.
//
// The header row is ensured first: appended when the sheet is empty, or
// inserted above the existing rows when row 1 does not equal Header.
// Column 1 is then scanned from the top, header row included, and the
// first cell equal to the invoice number selects the row to overwrite
// cell by cell. Without a match the record is appended at the bottom.
//
// Returns ActionUpdated or ActionAdded, or an error carrying the failing
// operation's detail.
func Upsert(ctx context.Context, store RowStore, rec invoice.Record) (string, error) {
	rows, err := store.ReadAllRows(ctx)
	if err != nil {
		return "", fmt.Errorf("Upsert: reading rows: %w", err)
	}

	if len(rows) == 0 {
		if err := store.AppendRow(ctx, Header); err != nil {
			return "", fmt.Errorf("Upsert: writing header: %w", err)
		}
	} else if !slices.Equal(rows[0], Header) {
		if err := store.InsertRowAt(ctx, 1, Header); err != nil {
			return "", fmt.Errorf("Upsert: inserting header: %w", err)
		}
	}

	// Re-read after the header fix so row numbers line up.
	ids, err := store.ReadColumn(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("Upsert: reading invoice numbers: %w", err)
	}

	fields := rec.Fields()
	for i, id := range ids {
		if id != rec.InvoiceNumber {
			continue
		}
		row := i + 1
		for col, value := range fields {
			if err := store.UpdateCell(ctx, row, col+1, value); err != nil {
				return "", fmt.Errorf("Upsert: updating row %d: %w", row, err)
			}
		}
		return ActionUpdated, nil
	}

	if err := store.AppendRow(ctx, fields); err != nil {
		return "", fmt.Errorf("Upsert: appending row: %w", err)
	}
	return ActionAdded, nil
}

// RecordsFromRows converts raw worksheet rows to records, skipping row 1
// when it is the header.
func RecordsFromRows(rows [][]string) []invoice.Record {
	records := make([]invoice.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && slices.Equal(row, Header) {
			continue
		}
		records = append(records, invoice.FromFields(row))
	}
	return records
}
