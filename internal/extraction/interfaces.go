package extraction

import (
	"context"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
)

// Extractor defines the interface for pulling an invoice record out of an
// image. This interface enables mocking and testing of model calls.
type Extractor interface {
	// Extract sends the image to the model and returns the decoded record
	// along with the model's raw reply text.
	Extract(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error)

	// Model reports the model name used for extraction.
	Model() string
}
