package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/archive"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/audit"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/extraction"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/imageprep"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/logger"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/sheet"
)

// Processor runs one upload through extraction and into the sheet. All
// dependencies are injected; use archive.Nop and audit.NopRunRepository when
// archiving or auditing is not configured.
type Processor struct {
	extractor extraction.Extractor
	store     sheet.RowStore
	archiver  archive.Archiver
	runs      audit.RunRepository
}

// NewProcessor creates a Processor with the given dependencies.
func NewProcessor(extractor extraction.Extractor, store sheet.RowStore, archiver archive.Archiver, runs audit.RunRepository) *Processor {
	return &Processor{
		extractor: extractor,
		store:     store,
		archiver:  archiver,
		runs:      runs,
	}
}

// Result describes a processed upload that reached the sheet.
type Result struct {
	Record     invoice.Record
	Action     string // sheet.ActionAdded or sheet.ActionUpdated
	RunID      string
	ArchiveURI string
}

// Process takes the raw upload bytes through preparation, archival,
// extraction, the empty-record gate, tax normalization and the sheet upsert.
// Archival and auditing are best effort; every other failure comes back as a
// *ProcessError.
//
// The sheet is only touched once a non-empty record has been decoded, so a
// photo of a cat never modifies the spreadsheet.
func (p *Processor) Process(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	log := logger.FromContext(ctx)

	if len(image) == 0 {
		return nil, &ProcessError{Kind: FailureNoInput, Detail: "no invoice image provided"}
	}

	prepared, preparedMime := imageprep.Prepare(image, mimeType)

	archiveURI, err := p.archiver.Store(ctx, image, mimeType)
	if err != nil {
		log.Warn().Err(err).Msg("archiving upload failed, continuing")
		archiveURI = ""
	}

	runID := uuid.NewString()
	row := &audit.ExtractionRunRow{
		RunID:          runID,
		Model:          p.extractor.Model(),
		StartedTS:      time.Now(),
		SourceMimeType: mimeType,
		SourceBytes:    int64(len(image)),
		ArchiveURI:     archiveURI,
	}
	if err := p.runs.StartRun(ctx, row); err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("recording extraction run failed, continuing")
	}

	rec, rawOutput, err := p.extractor.Extract(ctx, prepared, preparedMime)
	if err != nil {
		if errors.Is(err, extraction.ErrUnparseable) {
			if auditErr := p.runs.MarkRunEmpty(ctx, runID, rawOutput); auditErr != nil {
				log.Warn().Err(auditErr).Str("run_id", runID).Msg("finishing extraction run failed")
			}
			return nil, &ProcessError{
				Kind:   FailureUnparseable,
				Detail: "invoice cannot be extracted from the provided image",
				Err:    err,
			}
		}
		p.runs.MarkRunFailed(ctx, runID, err)
		return nil, &ProcessError{Kind: FailureInternal, Detail: "processing failed", Err: err}
	}

	// The all-sentinel reply is the model's "this is not an invoice"
	// signal. It must stop here: nothing is written to the sheet.
	if rec.AllSentinel() {
		if auditErr := p.runs.MarkRunEmpty(ctx, runID, rawOutput); auditErr != nil {
			log.Warn().Err(auditErr).Str("run_id", runID).Msg("finishing extraction run failed")
		}
		return nil, &ProcessError{
			Kind:   FailureEmpty,
			Detail: "invoice cannot be extracted from the provided image",
		}
	}

	rec = invoice.Normalize(rec)

	action, err := sheet.Upsert(ctx, p.store, rec)
	if err != nil {
		p.runs.MarkRunFailed(ctx, runID, err)
		return nil, &ProcessError{Kind: FailureSheet, Detail: err.Error(), Err: err}
	}

	if err := p.runs.MarkRunSucceeded(ctx, runID, rawOutput, rec.InvoiceNumber, action); err != nil {
		log.Warn().Err(err).Str("run_id", runID).Msg("finishing extraction run failed")
	}

	log.Info().
		Str("run_id", runID).
		Str("invoice_number", rec.InvoiceNumber).
		Str("action", action).
		Msg("invoice processed")

	return &Result{
		Record:     rec,
		Action:     action,
		RunID:      runID,
		ArchiveURI: archiveURI,
	}, nil
}
