package audit

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Run statuses. A run starts RUNNING and finishes in exactly one of the
// other three states.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusEmpty   = "EMPTY"
	StatusFailed  = "FAILED"
)

type ExtractionRunRow struct {
	RunID     string `bigquery:"run_id"`     // REQUIRED
	Model     string `bigquery:"model"`      // NULLABLE
	Status    string `bigquery:"status"`     // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	SourceMimeType string `bigquery:"source_mime_type"` // NULLABLE
	SourceBytes    int64  `bigquery:"source_bytes"`     // NULLABLE
	ArchiveURI     string `bigquery:"archive_uri"`      // NULLABLE

	RawOutput     string `bigquery:"raw_output"`     // NULLABLE
	InvoiceNumber string `bigquery:"invoice_number"` // NULLABLE
	Outcome       string `bigquery:"outcome"`        // NULLABLE
	ErrorMessage  string `bigquery:"error_message"`  // NULLABLE
}
