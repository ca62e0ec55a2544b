package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Bhargav-Kumar98/automated-invoice-extractor/internal/invoice"
)

// ErrUnparseable marks a model reply that could not be decoded into an
// invoice record. Callers treat it as "no invoice found" rather than an
// infrastructure fault.
var ErrUnparseable = errors.New("model reply is not a valid invoice object")

// decodeRecord turns the model's raw reply into a record. Missing fields
// default to the sentinel; non-string values and malformed JSON are rejected.
func decodeRecord(raw string) (invoice.Record, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return invoice.Record{}, fmt.Errorf("%w: empty reply", ErrUnparseable)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return invoice.Record{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	fields := make([]string, 0, invoice.NumFields)
	for _, key := range []string{"invoice_number", "customer_name", "gross_price", "tax", "total_price"} {
		value, err := stringField(payload, key)
		if err != nil {
			return invoice.Record{}, err
		}
		fields = append(fields, value)
	}
	return invoice.FromFields(fields), nil
}

// stringField reads a string value from the decoded payload. A missing key
// yields the sentinel.
func stringField(payload map[string]interface{}, key string) (string, error) {
	raw, ok := payload[key]
	if !ok {
		return invoice.Sentinel, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrUnparseable, key, raw)
	}
	return value, nil
}

// cleanModelJSON strips Markdown fences and surrounding chatter if the model
// ignored the strict JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// try to keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
