package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/api/middleware"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/export"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/pipeline"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/sheet"
)

// maxUploadBytes caps how much image data a single request may carry.
const maxUploadBytes = 20 << 20

// InvoiceProcessor is the slice of the pipeline the HTTP layer needs.
// This interface enables mocking and testing of the handler.
type InvoiceProcessor interface {
	Process(ctx context.Context, image []byte, mimeType string) (*pipeline.Result, error)
}

// InvoicesHandler handles invoice-related endpoints.
type InvoicesHandler struct {
	processor InvoiceProcessor
	store     sheet.RowStore
	log       zerolog.Logger
}

// NewInvoicesHandler creates a new invoices handler.
func NewInvoicesHandler(processor InvoiceProcessor, store sheet.RowStore, log zerolog.Logger) *InvoicesHandler {
	return &InvoicesHandler{
		processor: processor,
		store:     store,
		log:       log,
	}
}

type processResponse struct {
	Status     string         `json:"status"`
	Action     string         `json:"action"`
	Record     invoice.Record `json:"record"`
	RunID      string         `json:"run_id,omitempty"`
	ArchiveURI string         `json:"archive_uri,omitempty"`
}

type failureResponse struct {
	Status  string `json:"status"` // warning or error
	Message string `json:"message"`
}

// ProcessInvoice handles POST /api/invoices/process. It accepts a multipart
// form with the image in a "file" part or, for phone uploads, a "camera"
// part. When both are present the file wins.
func (h *InvoicesHandler) ProcessInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form data")
		return
	}

	data, mimeType, err := h.readImage(r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded image")
		return
	}

	result, err := h.processor.Process(ctx, data, mimeType)
	if err != nil {
		h.writeProcessFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, processResponse{
		Status:     "ok",
		Action:     result.Action,
		Record:     result.Record,
		RunID:      result.RunID,
		ArchiveURI: result.ArchiveURI,
	})
}

// readImage pulls the image bytes out of the multipart form. A missing part
// is not an error here; the pipeline classifies the empty input.
func (h *InvoicesHandler) readImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		file, header, err = r.FormFile("camera")
	}
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func (h *InvoicesHandler) writeProcessFailure(w http.ResponseWriter, err error) {
	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		h.log.Error().Err(err).Msg("Processing failed")
		middleware.WriteJSON(w, http.StatusInternalServerError, failureResponse{
			Status:  "error",
			Message: "processing failed",
		})
		return
	}

	if perr.Warning() {
		h.log.Warn().Str("kind", string(perr.Kind)).Msg(perr.Detail)
	} else {
		h.log.Error().Err(perr).Str("kind", string(perr.Kind)).Msg("Processing failed")
	}

	kind := "error"
	if perr.Warning() {
		kind = "warning"
	}
	middleware.WriteJSON(w, statusForFailure(perr.Kind), failureResponse{
		Status:  kind,
		Message: messageForFailure(perr),
	})
}

func statusForFailure(kind pipeline.FailureKind) int {
	switch kind {
	case pipeline.FailureNoInput:
		return http.StatusBadRequest
	case pipeline.FailureUnparseable, pipeline.FailureEmpty:
		return http.StatusUnprocessableEntity
	case pipeline.FailureSheet:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageForFailure(perr *pipeline.ProcessError) string {
	switch perr.Kind {
	case pipeline.FailureSheet:
		return "sheet update failed: " + perr.Detail
	case pipeline.FailureInternal:
		return "processing failed"
	default:
		return perr.Detail
	}
}

// ListInvoices handles GET /api/invoices. It returns the sheet's data rows
// as records, skipping the header row when present.
func (h *InvoicesHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.store.ReadAllRows(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read sheet")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to read sheet")
		return
	}

	records := sheet.RecordsFromRows(rows)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": records,
		"count":    len(records),
	})
}

// ExportInvoices handles GET /api/invoices/export. It streams the sheet's
// data rows as an .xlsx attachment.
func (h *InvoicesHandler) ExportInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.store.ReadAllRows(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read sheet")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to read sheet")
		return
	}

	records := sheet.RecordsFromRows(rows)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	if err := export.WriteXLSX(w, records); err != nil {
		// Headers are already out; all we can do is log.
		h.log.Error().Err(err).Msg("Failed to write workbook")
	}
}
