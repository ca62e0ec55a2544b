package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/api/handlers"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/api/middleware"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/archive"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/audit"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/extraction"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/logger"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/pipeline"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/sheet"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Parse command-line flags
	var (
		port            = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		spreadsheetName = flag.String("spreadsheet", envOr("SPREADSHEET_NAME", "Invoices"), "Spreadsheet name to look up via Drive (or set SPREADSHEET_NAME env)")
		spreadsheetID   = flag.String("spreadsheet-id", os.Getenv("SPREADSHEET_ID"), "Spreadsheet ID, skips the name lookup (or set SPREADSHEET_ID env)")
		model           = flag.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name (or set GEMINI_MODEL env)")
		bucket          = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for archiving uploads (or set GCS_BUCKET env)")
		bqProject       = flag.String("bq-project", os.Getenv("BQ_PROJECT"), "BigQuery project for the extraction audit trail (or set BQ_PROJECT env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	// Extraction client
	extractor, err := extraction.NewGeminiExtractor(ctx, apiKey, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
	}

	// Spreadsheet store
	store, err := buildSheetStore(ctx, log, *spreadsheetID, *spreadsheetName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open spreadsheet")
	}

	// Optional image archive
	var archiver archive.Archiver = archive.Nop{}
	if *bucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer storageClient.Close()
		archiver = archive.NewGCSArchiver(storageClient, *bucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - uploads will not be archived")
	}

	// Optional extraction audit trail
	var runs audit.RunRepository = audit.NopRunRepository{}
	if *bqProject != "" {
		bqClient, err := bigquery.NewClient(ctx, *bqProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		repo := audit.NewBigQueryRunRepository(bqClient)
		defer repo.Close()
		runs = repo
	} else {
		log.Warn().Msg("No BigQuery project configured - extraction runs will not be audited")
	}

	processor := pipeline.NewProcessor(extractor, store, archiver, runs)

	// Initialize handlers
	invoicesHandler := handlers.NewInvoicesHandler(processor, store, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/invoices/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			invoicesHandler.ProcessInvoice(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/invoices", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			invoicesHandler.ListInvoices(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/invoices/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			invoicesHandler.ExportInvoices(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildSheetStore opens the invoice spreadsheet. When no spreadsheet ID is
// given the name is resolved through the Drive API, which requires the
// spreadsheet to be shared with the service account.
func buildSheetStore(ctx context.Context, log zerolog.Logger, spreadsheetID, spreadsheetName string) (*sheet.GoogleSheetStore, error) {
	creds := os.Getenv("SHEETS_CREDENTIALS_FILE")

	sheetsOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if creds != "" {
		sheetsOpts = append(sheetsOpts, option.WithCredentialsFile(creds))
	}
	sheetsSvc, err := sheets.NewService(ctx, sheetsOpts...)
	if err != nil {
		return nil, err
	}

	if spreadsheetID == "" {
		driveOpts := []option.ClientOption{option.WithScopes(drive.DriveMetadataReadonlyScope)}
		if creds != "" {
			driveOpts = append(driveOpts, option.WithCredentialsFile(creds))
		}
		driveSvc, err := drive.NewService(ctx, driveOpts...)
		if err != nil {
			return nil, err
		}
		spreadsheetID, err = sheet.FindSpreadsheetID(ctx, driveSvc, spreadsheetName)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("spreadsheet", spreadsheetName).
			Str("spreadsheet_id", spreadsheetID).
			Msg("Resolved spreadsheet by name")
	}

	return sheet.NewGoogleSheetStore(ctx, sheetsSvc, spreadsheetID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
