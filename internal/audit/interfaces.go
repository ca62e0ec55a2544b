package audit

import (
	"context"

	"cloud.google.com/go/bigquery"
)

// RunRepository records one row per extraction attempt. The pipeline treats
// it as best effort: a failed audit write is logged and processing carries
// on.
type RunRepository interface {
	// StartRun inserts the row with status=RUNNING.
	StartRun(ctx context.Context, row *ExtractionRunRow) error

	// MarkRunSucceeded finishes the run with the sheet outcome.
	MarkRunSucceeded(ctx context.Context, runID, rawOutput, invoiceNumber, outcome string) error

	// MarkRunEmpty finishes the run for replies that yielded no invoice.
	MarkRunEmpty(ctx context.Context, runID, rawOutput string) error

	// MarkRunFailed finishes the run with the error. It never fails itself;
	// problems are logged.
	MarkRunFailed(ctx context.Context, runID string, runErr error)

	// Close releases the underlying client.
	Close() error
}

// BigQueryRunRepository is the concrete implementation of RunRepository that
// interacts with BigQuery. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type BigQueryRunRepository struct {
	client *bigquery.Client
}

// NewBigQueryRunRepository wraps an existing BigQuery client.
func NewBigQueryRunRepository(client *bigquery.Client) *BigQueryRunRepository {
	return &BigQueryRunRepository{client: client}
}

// Close closes the BigQuery client connection.
func (r *BigQueryRunRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartRun delegates to StartRunWithClient with the shared client.
func (r *BigQueryRunRepository) StartRun(ctx context.Context, row *ExtractionRunRow) error {
	return StartRunWithClient(ctx, r.client, row)
}

// MarkRunSucceeded delegates to MarkRunSucceededWithClient with the shared client.
func (r *BigQueryRunRepository) MarkRunSucceeded(ctx context.Context, runID, rawOutput, invoiceNumber, outcome string) error {
	return MarkRunSucceededWithClient(ctx, r.client, runID, rawOutput, invoiceNumber, outcome)
}

// MarkRunEmpty delegates to MarkRunEmptyWithClient with the shared client.
func (r *BigQueryRunRepository) MarkRunEmpty(ctx context.Context, runID, rawOutput string) error {
	return MarkRunEmptyWithClient(ctx, r.client, runID, rawOutput)
}

// MarkRunFailed delegates to MarkRunFailedWithClient with the shared client.
func (r *BigQueryRunRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	MarkRunFailedWithClient(ctx, r.client, runID, runErr)
}

// NopRunRepository is a RunRepository that records nothing, used when no
// BigQuery project is configured.
type NopRunRepository struct{}

func (NopRunRepository) StartRun(ctx context.Context, row *ExtractionRunRow) error {
	return nil
}

func (NopRunRepository) MarkRunSucceeded(ctx context.Context, runID, rawOutput, invoiceNumber, outcome string) error {
	return nil
}

func (NopRunRepository) MarkRunEmpty(ctx context.Context, runID, rawOutput string) error {
	return nil
}

func (NopRunRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {}

func (NopRunRepository) Close() error {
	return nil
}
