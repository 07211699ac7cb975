package extract

import (
	"context"
	"fmt"
	"strings"

	"fleetops/fleet-ledger/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractionPrompt = `You are a parser for Korean bank, card and receipt statements.

Task:
- Extract EVERY transaction in the attached statement.
- Output STRICT JSON only: a JSON array of objects, no comments, no extra text.
- Do NOT wrap the response in code fences.

Each object must have these fields:
- "transaction_date": string, ISO format "YYYY-MM-DD"
- "type": "income" for money received, "expense" for money paid out
- "client_name": string, the merchant or counterparty
- "description": string, memo or item details, "" if none
- "amount": positive whole number in KRW, no separators
- "payment_method": "Card" or "Bank"

If the input cannot be parsed, return {"error": "<reason>"}.
`

// GeminiClient uses a Gemini model as the extraction service.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiClient creates a Gemini-backed extractor. Close it when done.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

// Extract implements Extractor.
func (c *GeminiClient) Extract(ctx context.Context, req Request) (*Result, error) {
	parts := []genai.Part{genai.Text(extractionPrompt)}
	if req.IsImage() {
		parts = append(parts, genai.Blob{MIMEType: req.MIMEType, Data: req.Data})
	} else {
		parts = append(parts, genai.Text("Statement rows (CSV, first line is the header):\n"+req.CSV))
	}

	c.logger.Debug("Sending extraction request to Gemini",
		logging.Field{Key: logging.FieldRequestID, Value: req.ID},
		logging.Field{Key: logging.FieldMIMEType, Value: req.MIMEType})

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("no response from Gemini API")
	}
	return DecodeResponse([]byte(text))
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}
