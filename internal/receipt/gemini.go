package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/mmynk/splitroom/internal/models"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

const extractionPrompt = `
Analyze this receipt image and extract the following information in JSON format:
1. items: an array of objects, each containing:
   - name: string (item name, keep it concise)
   - price: number (price per unit)
   - quantity: number (default to 1 if not specified)
2. serviceTax: number (percentage, if found, else 0)
3. taxProfiles: an array of taxes listed on the receipt, each containing:
   - name: string (e.g. "GST", "VAT")
   - rate: number (percentage)
   - isGlobal: boolean (true if it applies to every item)
   - isDouble: boolean (true if it is charged twice, e.g. CGST and SGST at the same rate)
4. currency: string (e.g., "USD", "INR", "EUR", "GBP", "JPY")

Ignore totals, subtotals, and balance due lines. Focus on individual line items.
If the image is not a receipt or unreadable, return an error field.
Return ONLY valid JSON, no markdown formatting.
`

// GeminiScanner extracts drafts with a Gemini vision model.
type GeminiScanner struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiScanner creates a scanner backed by the Gemini API.
func NewGeminiScanner(ctx context.Context, apiKey, model string) (*GeminiScanner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", ErrUnavailable)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiScanner{client: client, model: model, timeout: 60 * time.Second}, nil
}

func (g *GeminiScanner) Scan(ctx context.Context, image []byte, mimeType string) (*models.ReceiptDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText(extractionPrompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		slog.Error("Receipt scan failed", "model", g.model, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text := resp.Text()
	draft, err := Parse(text)
	if err != nil {
		slog.Warn("Failed to parse receipt response", "model", g.model, "error", err, "response_len", len(text))
		return nil, err
	}

	slog.Info("Scanned receipt",
		"model", g.model,
		"items", len(draft.Items),
		"tax_profiles", len(draft.TaxProfiles),
		"rejected", len(draft.Rejected),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return draft, nil
}
