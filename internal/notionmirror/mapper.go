package notionmirror

import (
	"github.com/jomei/notionapi"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
)

// RecordToProperties converts a sheet record to Notion page properties.
// The invoice number becomes the page title; the other four columns are
// mirrored as rich text exactly as the sheet displays them, placeholder
// values included. Every property is always set, so updating an existing
// page overwrites whatever the page held before.
func RecordToProperties(rec invoice.Record) notionapi.Properties {
	return notionapi.Properties{
		"Invoice Number": notionapi.TitleProperty{
			Title: richText(rec.InvoiceNumber),
		},
		"Customer Name": notionapi.RichTextProperty{RichText: richText(rec.CustomerName)},
		"Gross Price":   notionapi.RichTextProperty{RichText: richText(rec.GrossPrice)},
		"Tax":           notionapi.RichTextProperty{RichText: richText(rec.Tax)},
		"Total Price":   notionapi.RichTextProperty{RichText: richText(rec.TotalPrice)},
	}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: s,
			},
		},
	}
}

// extractInvoiceNumber reads the invoice number from a Notion page's title
// property. Returns empty string if not found.
func extractInvoiceNumber(page notionapi.Page) string {
	prop, ok := page.Properties["Invoice Number"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
