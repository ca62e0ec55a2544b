package extraction

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
)

// DefaultModelName is the default Gemini model used for extraction.
const DefaultModelName = "gemini-2.0-flash-exp"

// GeminiExtractor is the concrete Extractor backed by the Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates an extractor with its own GenAI client. An empty
// model selects DefaultModelName.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}

	if model == "" {
		model = DefaultModelName
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Model reports the model name used for extraction.
func (g *GeminiExtractor) Model() string {
	return g.model
}

// Extract sends the image to Gemini and decodes its JSON reply into a record.
// The raw reply text is returned alongside the record for auditing, including
// when decoding fails.
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (invoice.Record, string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return invoice.Record{}, "", fmt.Errorf("Extract: generate content: %w", err)
	}

	rawText := resp.Text()
	rec, err := decodeRecord(rawText)
	if err != nil {
		return invoice.Record{}, rawText, fmt.Errorf("Extract: %w", err)
	}
	return rec, rawText, nil
}

// responseSchema constrains the model reply to a flat object with the five
// invoice fields, all strings.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"invoice_number": {Type: genai.TypeString},
			"customer_name":  {Type: genai.TypeString},
			"gross_price":    {Type: genai.TypeString},
			"tax":            {Type: genai.TypeString},
			"total_price":    {Type: genai.TypeString},
		},
		Required: []string{"invoice_number", "customer_name", "gross_price", "tax", "total_price"},
	}
}
