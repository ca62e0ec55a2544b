package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/audit"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/extraction"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/pipeline"
)

// MockExtractor is a mock implementation of extraction.Extractor for testing.
type MockExtractor struct {
	ExtractFunc func(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error)
	calls       int
}

func (m *MockExtractor) Extract(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error) {
	m.calls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, image, mimeType)
	}
	return invoice.Record{}, "", errors.New("no ExtractFunc configured")
}

func (m *MockExtractor) Model() string {
	return "test-model"
}

// MockArchiver is a mock implementation of archive.Archiver for testing.
type MockArchiver struct {
	StoreFunc func(ctx context.Context, data []byte, mimeType string) (string, error)
	calls     int
}

func (m *MockArchiver) Store(ctx context.Context, data []byte, mimeType string) (string, error) {
	m.calls++
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, data, mimeType)
	}
	return "gs://test-bucket/object", nil
}

// MockRunRepository is a mock implementation of audit.RunRepository that
// records which finishing state each run reached.
type MockRunRepository struct {
	StartRunErr error

	started   int
	succeeded int
	empty     int
	failed    int

	lastOutcome string
}

func (m *MockRunRepository) StartRun(ctx context.Context, row *audit.ExtractionRunRow) error {
	m.started++
	return m.StartRunErr
}

func (m *MockRunRepository) MarkRunSucceeded(ctx context.Context, runID, rawOutput, invoiceNumber, outcome string) error {
	m.succeeded++
	m.lastOutcome = outcome
	return nil
}

func (m *MockRunRepository) MarkRunEmpty(ctx context.Context, runID, rawOutput string) error {
	m.empty++
	return nil
}

func (m *MockRunRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	m.failed++
}

func (m *MockRunRepository) Close() error {
	return nil
}

// memStore is an in-memory sheet.RowStore.
type memStore struct {
	rows       [][]string
	readAllErr error
	calls      int
}

func (s *memStore) ReadAllRows(ctx context.Context) ([][]string, error) {
	s.calls++
	if s.readAllErr != nil {
		return nil, s.readAllErr
	}
	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *memStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	s.calls++
	var out []string
	for _, row := range s.rows {
		if col <= len(row) {
			out = append(out, row[col-1])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

func (s *memStore) InsertRowAt(ctx context.Context, index int, values []string) error {
	s.calls++
	row := append([]string(nil), values...)
	s.rows = append(s.rows[:index-1], append([][]string{row}, s.rows[index-1:]...)...)
	return nil
}

func (s *memStore) AppendRow(ctx context.Context, values []string) error {
	s.calls++
	s.rows = append(s.rows, append([]string(nil), values...))
	return nil
}

func (s *memStore) UpdateCell(ctx context.Context, row, col int, value string) error {
	s.calls++
	for len(s.rows[row-1]) < col {
		s.rows[row-1] = append(s.rows[row-1], "")
	}
	s.rows[row-1][col-1] = value
	return nil
}

func extractorReturning(rec invoice.Record) *MockExtractor {
	raw, _ := json.Marshal(rec)
	return &MockExtractor{
		ExtractFunc: func(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error) {
			return rec, string(raw), nil
		},
	}
}

func TestProcess_AddsNewInvoice(t *testing.T) {
	rec := invoice.Record{
		InvoiceNumber: "INV-1",
		CustomerName:  "Acme",
		GrossPrice:    "100",
		Tax:           "10.0",
		TotalPrice:    "110.0",
	}
	extractor := extractorReturning(rec)
	store := &memStore{}
	runs := &MockRunRepository{}

	p := pipeline.NewProcessor(extractor, store, &MockArchiver{}, runs)
	result, err := p.Process(context.Background(), []byte("image bytes"), "image/png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Action != "added" {
		t.Errorf("action = %q, want added", result.Action)
	}
	if result.Record != rec {
		t.Errorf("record = %+v, want %+v", result.Record, rec)
	}
	if result.RunID == "" {
		t.Error("run ID should be set")
	}
	if result.ArchiveURI != "gs://test-bucket/object" {
		t.Errorf("archive URI = %q", result.ArchiveURI)
	}

	wantRows := [][]string{
		{"Invoice Number", "Customer Name", "Gross Price", "Tax", "Total Price"},
		{"INV-1", "Acme", "100", "10.0", "110.0"},
	}
	if len(store.rows) != 2 || store.rows[1][0] != "INV-1" {
		t.Errorf("sheet rows = %v, want %v", store.rows, wantRows)
	}

	if runs.started != 1 || runs.succeeded != 1 {
		t.Errorf("runs: started=%d succeeded=%d, want 1/1", runs.started, runs.succeeded)
	}
	if runs.lastOutcome != "added" {
		t.Errorf("recorded outcome = %q, want added", runs.lastOutcome)
	}
}

func TestProcess_NormalizesPercentageTaxBeforeSheet(t *testing.T) {
	extractor := extractorReturning(invoice.Record{
		InvoiceNumber: "INV-2",
		CustomerName:  "Globex",
		GrossPrice:    "100",
		Tax:           "10%",
		TotalPrice:    "-",
	})
	store := &memStore{}

	p := pipeline.NewProcessor(extractor, store, &MockArchiver{}, &MockRunRepository{})
	result, err := p.Process(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Record.Tax != "10.0" || result.Record.TotalPrice != "110.0" {
		t.Errorf("normalized record = %+v, want tax 10.0 total 110.0", result.Record)
	}
	written := store.rows[len(store.rows)-1]
	if written[3] != "10.0" || written[4] != "110.0" {
		t.Errorf("sheet row = %v, want normalized values written", written)
	}
}

func TestProcess_EmptyRecordNeverTouchesSheet(t *testing.T) {
	extractor := extractorReturning(invoice.Record{
		InvoiceNumber: "-",
		CustomerName:  "-",
		GrossPrice:    "-",
		Tax:           "-",
		TotalPrice:    "-",
	})
	store := &memStore{}
	runs := &MockRunRepository{}

	p := pipeline.NewProcessor(extractor, store, &MockArchiver{}, runs)
	_, err := p.Process(context.Background(), []byte("cat photo"), "image/jpeg")

	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProcessError", err)
	}
	if perr.Kind != pipeline.FailureEmpty {
		t.Errorf("kind = %q, want %q", perr.Kind, pipeline.FailureEmpty)
	}
	if !perr.Warning() {
		t.Error("empty extraction should be a warning")
	}
	if store.calls != 0 {
		t.Errorf("sheet store saw %d calls, want 0", store.calls)
	}
	if runs.empty != 1 {
		t.Errorf("runs.empty = %d, want 1", runs.empty)
	}
}

func TestProcess_UnparseableReply(t *testing.T) {
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error) {
			return invoice.Record{}, "I see a receipt maybe?", fmt.Errorf("Extract: %w", extraction.ErrUnparseable)
		},
	}
	store := &memStore{}
	runs := &MockRunRepository{}

	p := pipeline.NewProcessor(extractor, store, &MockArchiver{}, runs)
	_, err := p.Process(context.Background(), []byte("img"), "image/png")

	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProcessError", err)
	}
	if perr.Kind != pipeline.FailureUnparseable {
		t.Errorf("kind = %q, want %q", perr.Kind, pipeline.FailureUnparseable)
	}
	if store.calls != 0 {
		t.Errorf("sheet store saw %d calls, want 0", store.calls)
	}
	if runs.empty != 1 {
		t.Errorf("runs.empty = %d, want 1", runs.empty)
	}
}

func TestProcess_ModelTransportError(t *testing.T) {
	extractor := &MockExtractor{
		ExtractFunc: func(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error) {
			return invoice.Record{}, "", errors.New("rpc error: deadline exceeded")
		},
	}
	runs := &MockRunRepository{}

	p := pipeline.NewProcessor(extractor, &memStore{}, &MockArchiver{}, runs)
	_, err := p.Process(context.Background(), []byte("img"), "image/png")

	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProcessError", err)
	}
	if perr.Kind != pipeline.FailureInternal {
		t.Errorf("kind = %q, want %q", perr.Kind, pipeline.FailureInternal)
	}
	if perr.Warning() {
		t.Error("transport errors are not warnings")
	}
	if runs.failed != 1 {
		t.Errorf("runs.failed = %d, want 1", runs.failed)
	}
}

func TestProcess_SheetFailureCarriesDetail(t *testing.T) {
	extractor := extractorReturning(invoice.Record{InvoiceNumber: "INV-3", CustomerName: "Acme", GrossPrice: "10", Tax: "1", TotalPrice: "11"})
	store := &memStore{readAllErr: errors.New("googleapi: Error 403: The caller does not have permission")}
	runs := &MockRunRepository{}

	p := pipeline.NewProcessor(extractor, store, &MockArchiver{}, runs)
	_, err := p.Process(context.Background(), []byte("img"), "image/png")

	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProcessError", err)
	}
	if perr.Kind != pipeline.FailureSheet {
		t.Errorf("kind = %q, want %q", perr.Kind, pipeline.FailureSheet)
	}
	if !strings.Contains(perr.Detail, "does not have permission") {
		t.Errorf("detail = %q, want the sheet error text", perr.Detail)
	}
	if runs.failed != 1 {
		t.Errorf("runs.failed = %d, want 1", runs.failed)
	}
}

func TestProcess_NoInput(t *testing.T) {
	extractor := &MockExtractor{}

	p := pipeline.NewProcessor(extractor, &memStore{}, &MockArchiver{}, &MockRunRepository{})
	_, err := p.Process(context.Background(), nil, "")

	var perr *pipeline.ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProcessError", err)
	}
	if perr.Kind != pipeline.FailureNoInput {
		t.Errorf("kind = %q, want %q", perr.Kind, pipeline.FailureNoInput)
	}
	if extractor.calls != 0 {
		t.Errorf("extractor called %d times, want 0", extractor.calls)
	}
}

func TestProcess_ArchiveFailureIsTolerated(t *testing.T) {
	extractor := extractorReturning(invoice.Record{InvoiceNumber: "INV-4", CustomerName: "Acme", GrossPrice: "10", Tax: "1", TotalPrice: "11"})
	archiver := &MockArchiver{
		StoreFunc: func(ctx context.Context, data []byte, mimeType string) (string, error) {
			return "", errors.New("bucket not found")
		},
	}

	p := pipeline.NewProcessor(extractor, &memStore{}, archiver, &MockRunRepository{})
	result, err := p.Process(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.ArchiveURI != "" {
		t.Errorf("archive URI = %q, want empty after failed archive", result.ArchiveURI)
	}
	if result.Action != "added" {
		t.Errorf("action = %q, want added", result.Action)
	}
}

func TestProcess_AuditFailureIsTolerated(t *testing.T) {
	extractor := extractorReturning(invoice.Record{InvoiceNumber: "INV-5", CustomerName: "Acme", GrossPrice: "10", Tax: "1", TotalPrice: "11"})
	runs := &MockRunRepository{StartRunErr: errors.New("dataset not found")}

	p := pipeline.NewProcessor(extractor, &memStore{}, &MockArchiver{}, runs)
	result, err := p.Process(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Action != "added" {
		t.Errorf("action = %q, want added", result.Action)
	}
}
