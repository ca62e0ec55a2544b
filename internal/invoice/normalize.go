package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize derives the absolute tax and total when the model reported tax as
// a percentage. Given a parsable gross price and a tax containing '%', it
// overwrites Tax with round2(gross*p/100) and TotalPrice with
// round2(gross+tax), replacing whatever total the model produced. In every
// other case the record is returned unchanged.
//
// This is deliberately best-effort: any parse failure returns the original
// record as-is, so a strangely formatted invoice still flows through to the
// sheet with its raw values.
func Normalize(r Record) Record {
	gross, err := ParseAmount(r.GrossPrice)
	if err != nil {
		return r
	}

	if !strings.Contains(r.Tax, "%") {
		return r
	}

	pct, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(r.Tax, "%", "")))
	if err != nil {
		return r
	}

	tax := gross.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	total := gross.Add(tax).Round(2)

	r.Tax = formatAmount(tax)
	r.TotalPrice = formatAmount(total)
	return r
}

// ParseAmount parses a display-formatted money string, tolerating thousands
// separators and dollar signs ("$1,234.56").
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	return decimal.NewFromString(strings.TrimSpace(cleaned))
}

// formatAmount renders a computed amount the way the sheet displays it:
// shortest decimal form, but never bare integers ("110" becomes "110.0").
func formatAmount(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
