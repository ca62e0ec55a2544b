// Package export renders invoice records as an .xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/sheet"
)

// SheetName is the worksheet the workbook is written to.
const SheetName = "Invoices"

// WriteXLSX renders records as a spreadsheet with the standard header row
// and writes the workbook to w. Every cell is written as text exactly as
// the sheet displays it, currency symbols and placeholders included, so
// the workbook reads back row for row.
func WriteXLSX(w io.Writer, records []invoice.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("WriteXLSX: renaming sheet: %w", err)
	}

	col := 'A'
	for _, h := range sheet.Header {
		if err := f.SetCellStr(SheetName, string(col)+"1", h); err != nil {
			return fmt.Errorf("WriteXLSX: writing header: %w", err)
		}
		col++
	}

	for i, rec := range records {
		row := fmt.Sprint(i + 2)
		col := 'A'
		for _, value := range rec.Fields() {
			if err := f.SetCellStr(SheetName, string(col)+row, value); err != nil {
				return fmt.Errorf("WriteXLSX: writing row %s: %w", row, err)
			}
			col++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("WriteXLSX: writing workbook: %w", err)
	}
	return nil
}
