// Package notionmirror mirrors the invoice sheet into a Notion database.
// The sheet is the source of truth: every sheet row gets a page created or
// refreshed, and pages whose invoice number no longer appears are archived.
package notionmirror

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/logger"
)

// Stats summarizes what a mirror run did.
type Stats struct {
	Created  int
	Updated  int
	Archived int
}

// MirrorRecords pushes the given sheet records into the Notion database.
// Pages are matched to records by invoice number. Stale pages, including
// pages with no readable invoice number, are archived first. Failures on
// individual pages are logged and skipped so one bad page does not abort
// the whole run. With dryRun set, no writes happen and the returned stats
// describe what a real run would have done.
func MirrorRecords(ctx context.Context, notion NotionService, databaseID string, records []invoice.Record, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Int("record_count", len(records)).
		Bool("dry_run", dryRun).
		Msg("Starting invoice mirror to Notion")

	valid := make(map[string]bool)
	for _, rec := range records {
		valid[rec.InvoiceNumber] = true
	}

	pages, err := queryAllPages(ctx, notion, databaseID)
	if err != nil {
		return Stats{}, fmt.Errorf("MirrorRecords: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	// First page per invoice number wins, matching the sheet's own
	// first-match update rule.
	pageByNumber := make(map[string]string)
	for _, page := range pages {
		number := extractInvoiceNumber(page)
		if number == "" {
			continue
		}
		if _, ok := pageByNumber[number]; !ok {
			pageByNumber[number] = string(page.ID)
		}
	}

	var stats Stats

	for _, page := range pages {
		number := extractInvoiceNumber(page)
		if number != "" && valid[number] {
			continue
		}

		if dryRun {
			log.Info().
				Str("invoice_number", number).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			stats.Archived++
			continue
		}

		if err := notion.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("invoice_number", number).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		log.Info().
			Str("invoice_number", number).
			Str("page_id", string(page.ID)).
			Msg("Archived stale Notion page")
		stats.Archived++
	}

	for _, rec := range records {
		pageID, exists := pageByNumber[rec.InvoiceNumber]

		if dryRun {
			if exists {
				log.Info().
					Str("invoice_number", rec.InvoiceNumber).
					Str("page_id", pageID).
					Msg("[DRY RUN] Would update Notion page")
				stats.Updated++
			} else {
				log.Info().
					Str("invoice_number", rec.InvoiceNumber).
					Msg("[DRY RUN] Would create Notion page")
				stats.Created++
			}
			continue
		}

		props := RecordToProperties(rec)

		if exists {
			if _, err := notion.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().
					Err(err).
					Str("invoice_number", rec.InvoiceNumber).
					Str("page_id", pageID).
					Msg("Failed to update Notion page")
				continue
			}
			stats.Updated++
		} else {
			page, err := notion.CreatePage(ctx, databaseID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("invoice_number", rec.InvoiceNumber).
					Msg("Failed to create Notion page")
				continue
			}
			// Remember the new page so a duplicate number later in the
			// records updates it instead of creating a second page.
			pageByNumber[rec.InvoiceNumber] = string(page.ID)
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("total", len(records)).
		Msg("Invoice mirror completed")

	return stats, nil
}

// queryAllPages queries all pages from a Notion database, following
// pagination cursors until the last page.
func queryAllPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
