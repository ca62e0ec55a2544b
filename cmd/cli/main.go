package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/archive"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/audit"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/export"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/extraction"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/logger"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/notionmirror"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/pipeline"
	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/sheet"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "list":
		runList(log)
	case "export":
		runExport(log)
	case "mirror":
		runMirror(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Invoice Extractor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Extract an invoice image and upsert it into the sheet")
	fmt.Println("  list      Print the sheet's invoice rows")
	fmt.Println("  export    Write the sheet's invoice rows to an .xlsx file")
	fmt.Println("  mirror    Mirror the sheet into a Notion database")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the invoice image")
	model := fs.String("model", os.Getenv("GEMINI_MODEL"), "Gemini model name")
	bucket := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for archiving the image")
	bqProject := fs.String("bq-project", os.Getenv("BQ_PROJECT"), "BigQuery project for the audit trail")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli process -file PATH")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read image")
	}
	mimeType := mime.TypeByExtension(filepath.Ext(*filePath))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	extractor, err := extraction.NewGeminiExtractor(ctx, apiKey, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
	}

	store := openStore(ctx, log)

	var archiver archive.Archiver = archive.Nop{}
	if *bucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer storageClient.Close()
		archiver = archive.NewGCSArchiver(storageClient, *bucket)
	}

	var runs audit.RunRepository = audit.NopRunRepository{}
	if *bqProject != "" {
		bqClient, err := bigquery.NewClient(ctx, *bqProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		repo := audit.NewBigQueryRunRepository(bqClient)
		defer repo.Close()
		runs = repo
	}

	processor := pipeline.NewProcessor(extractor, store, archiver, runs)

	result, err := processor.Process(ctx, data, mimeType)
	if err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}

	fmt.Printf("Invoice %s %s.\n", result.Record.InvoiceNumber, result.Action)
	fmt.Printf("  Customer:    %s\n", result.Record.CustomerName)
	fmt.Printf("  Gross Price: %s\n", result.Record.GrossPrice)
	fmt.Printf("  Tax:         %s\n", result.Record.Tax)
	fmt.Printf("  Total Price: %s\n", result.Record.TotalPrice)
	if result.ArchiveURI != "" {
		fmt.Printf("  Archived:    %s\n", result.ArchiveURI)
	}
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store := openStore(ctx, log)

	rows, err := store.ReadAllRows(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read sheet")
	}

	records := sheet.RecordsFromRows(rows)
	if len(records) == 0 {
		fmt.Println("No invoices found.")
		return
	}

	fmt.Printf("%-20s %-30s %12s %12s %12s\n", "Invoice Number", "Customer Name", "Gross Price", "Tax", "Total Price")
	for _, rec := range records {
		fmt.Printf("%-20s %-30s %12s %12s %12s\n",
			rec.InvoiceNumber, rec.CustomerName, rec.GrossPrice, rec.Tax, rec.TotalPrice)
	}
	fmt.Printf("\n%d invoice(s).\n", len(records))
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outPath := fs.String("out", "invoices.xlsx", "Path of the workbook to write")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store := openStore(ctx, log)

	rows, err := store.ReadAllRows(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read sheet")
	}
	records := sheet.RecordsFromRows(rows)

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()

	if err := export.WriteXLSX(f, records); err != nil {
		log.Fatal().Err(err).Msg("Failed to write workbook")
	}

	fmt.Printf("Wrote %d invoice(s) to %s\n", len(records), *outPath)
}

func runMirror(log zerolog.Logger) {
	fs := flag.NewFlagSet("mirror", flag.ExitOnError)
	databaseID := fs.String("db", os.Getenv("NOTION_DATABASE_ID"), "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := fs.Bool("dry-run", false, "Log what would change without writing to Notion")
	fs.Parse(os.Args[2:])

	if *databaseID == "" {
		log.Fatal().Msg("Error: --db is required")
	}

	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		log.Fatal().Msg("NOTION_TOKEN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store := openStore(ctx, log)

	rows, err := store.ReadAllRows(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read sheet")
	}
	records := sheet.RecordsFromRows(rows)

	notion := notionmirror.NewNotionClient(token)

	stats, err := notionmirror.MirrorRecords(ctx, notion, *databaseID, records, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Mirror failed")
	}

	fmt.Printf("Mirror complete: %d created, %d updated, %d archived.\n",
		stats.Created, stats.Updated, stats.Archived)
}

// openStore builds the Google Sheets row store from the environment, fatally
// logging any failure. SPREADSHEET_ID skips the Drive name lookup.
func openStore(ctx context.Context, log zerolog.Logger) *sheet.GoogleSheetStore {
	creds := os.Getenv("SHEETS_CREDENTIALS_FILE")

	sheetsOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if creds != "" {
		sheetsOpts = append(sheetsOpts, option.WithCredentialsFile(creds))
	}
	sheetsSvc, err := sheets.NewService(ctx, sheetsOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Sheets service")
	}

	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		name := os.Getenv("SPREADSHEET_NAME")
		if name == "" {
			name = "Invoices"
		}

		driveOpts := []option.ClientOption{option.WithScopes(drive.DriveMetadataReadonlyScope)}
		if creds != "" {
			driveOpts = append(driveOpts, option.WithCredentialsFile(creds))
		}
		driveSvc, err := drive.NewService(ctx, driveOpts...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Drive service")
		}

		spreadsheetID, err = sheet.FindSpreadsheetID(ctx, driveSvc, name)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to find spreadsheet")
		}
	}

	store, err := sheet.NewGoogleSheetStore(ctx, sheetsSvc, spreadsheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open spreadsheet")
	}
	return store
}
