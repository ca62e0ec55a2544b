package audit

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/logger"
)

const (
	datasetID = "invoices"
	runsTable = "extraction_runs"
)

// StartRunWithClient inserts a new row into invoices.extraction_runs with
// status=RUNNING using the provided BigQuery client. Uses DML INSERT so the
// row can be updated right away without hitting the streaming buffer.
func StartRunWithClient(ctx context.Context, client *bigquery.Client, row *ExtractionRunRow) error {
	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			model,
			status,
			started_ts,
			source_mime_type,
			source_bytes,
			archive_uri
		)
		VALUES (
			@run_id,
			@model,
			@status,
			@started_ts,
			@source_mime_type,
			@source_bytes,
			@archive_uri
		)
	`, datasetID, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: row.RunID},
		{Name: "model", Value: row.Model},
		{Name: "status", Value: StatusRunning},
		{Name: "started_ts", Value: row.StartedTS},
		{Name: "source_mime_type", Value: row.SourceMimeType},
		{Name: "source_bytes", Value: row.SourceBytes},
		{Name: "archive_uri", Value: row.ArchiveURI},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("StartRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("StartRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("StartRun: job error: %w", err)
	}

	return nil
}

// MarkRunSucceededWithClient sets status=SUCCESS, finished_ts, the raw model
// output and the upsert result using the provided BigQuery client.
func MarkRunSucceededWithClient(ctx context.Context, client *bigquery.Client, runID, rawOutput, invoiceNumber, outcome string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    raw_output = @raw_output,
		    invoice_number = @invoice_number,
		    outcome = @outcome
		WHERE run_id = @run_id
	`, datasetID, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: StatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "raw_output", Value: rawOutput},
		{Name: "invoice_number", Value: invoiceNumber},
		{Name: "outcome", Value: outcome},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkRunSucceeded: job error: %w", err)
	}

	return nil
}

// MarkRunEmptyWithClient sets status=EMPTY and keeps the raw model output so
// replies that yielded no invoice can be inspected later.
func MarkRunEmptyWithClient(ctx context.Context, client *bigquery.Client, runID, rawOutput string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    raw_output = @raw_output
		WHERE run_id = @run_id
	`, datasetID, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: StatusEmpty},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "raw_output", Value: rawOutput},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunEmpty: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunEmpty: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkRunEmpty: job error: %w", err)
	}

	return nil
}

// MarkRunFailedWithClient sets status=FAILED, finished_ts and error_message
// using the provided BigQuery client. Errors are logged, not returned, so a
// broken audit trail never masks the failure being recorded.
func MarkRunFailedWithClient(ctx context.Context, client *bigquery.Client, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, datasetID, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: StatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: job completed with error")
	}
}
