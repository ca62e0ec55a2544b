package extraction

// extractionPrompt instructs the model to return the five invoice fields as
// strict JSON, with "-" standing in for anything it cannot read. The closing
// note makes non-invoice images come back as all "-" instead of hallucinated
// values.
const extractionPrompt = `Extract invoice details including:
- Customer Name (exact match)
- Invoice Number/ID (any format)
- Gross Price (pre-tax)
- Tax (value or %)
- Total Price (final amount)

Rules:
1. Return JSON with "-" for missing fields.
2. Calculate tax if percentage given.
3. Verify total = gross + tax.
4. Maintain original formatting.
Note: If the provided image is not a valid invoice, return JSON with all fields as "-" to indicate that the invoice cannot be extracted.`
