package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractionPrompt = `You are reading a scanned supplier invoice.
Return ONLY a JSON object, no prose, in this shape:
{
  "supplier": "", "invoiceNumber": "", "date": "", "total": 0,
  "items": [
    {"rawText": "", "description": "", "quantity": 0, "unitPrice": 0,
     "total": 0, "sku": "", "partNumber": ""}
  ]
}
One entry per product line. Leave unknown fields empty. Numbers may be
returned as strings if the printed format is ambiguous.`

// GeminiExtractor is the production Extractor: one image, one
// generateContent call, JSON out.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiExtractor{client: client, model: client.GenerativeModel(modelName)}, nil
}

func (g *GeminiExtractor) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(extractionPrompt),
		genai.ImageData(imageFormat(mimeType), image))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoItems
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	return parseExtraction(text)
}

// imageFormat maps a MIME type to the bare format genai.ImageData wants.
func imageFormat(mimeType string) string {
	f := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	if f == "" || strings.ContainsAny(f, "/;") {
		return "jpeg"
	}
	return f
}
