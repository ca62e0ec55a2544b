package invoice

import "strings"

// Sentinel is the placeholder the extraction model uses for a field it
// could not determine.
const Sentinel = "-"

// Record is one extracted invoice. All values are kept as display-formatted
// text: gross price may carry currency symbols and thousands separators, tax
// may be an absolute value or a percentage ("8.25%").
type Record struct {
	InvoiceNumber string `json:"invoice_number"`
	CustomerName  string `json:"customer_name"`
	GrossPrice    string `json:"gross_price"`
	Tax           string `json:"tax"`
	TotalPrice    string `json:"total_price"`
}

// NumFields is the number of columns a record occupies in the table.
const NumFields = 5

// Fields returns the record's values in table column order.
func (r Record) Fields() []string {
	return []string{r.InvoiceNumber, r.CustomerName, r.GrossPrice, r.Tax, r.TotalPrice}
}

// FromFields builds a record from a table row. Missing trailing cells become
// the sentinel, extra cells are ignored.
func FromFields(fields []string) Record {
	padded := make([]string, NumFields)
	for i := range padded {
		if i < len(fields) {
			padded[i] = fields[i]
		} else {
			padded[i] = Sentinel
		}
	}
	return Record{
		InvoiceNumber: padded[0],
		CustomerName:  padded[1],
		GrossPrice:    padded[2],
		Tax:           padded[3],
		TotalPrice:    padded[4],
	}
}

// AllSentinel reports whether every field, after trimming surrounding
// whitespace, equals the sentinel. The model returns such a record when the
// image is not a readable invoice, so this is the extraction-failed signal
// and must be checked before the record goes anywhere near the sheet.
func (r Record) AllSentinel() bool {
	for _, f := range r.Fields() {
		if strings.TrimSpace(f) != Sentinel {
			return false
		}
	}
	return true
}
