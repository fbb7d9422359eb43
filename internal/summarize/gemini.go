package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiBackend summarizes through Google's Gemini models.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Close() {
	if b.client != nil {
		b.client.Close()
	}
}

func (b *GeminiBackend) Summarize(ctx context.Context, title, body string, maxChars int) (string, error) {
	model := b.client.GenerativeModel(b.model)
	// Rough chars-to-tokens headroom so the model doesn't stop mid-sentence.
	model.SetMaxOutputTokens(int32(maxChars/2 + 128))

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(title, body, maxChars)))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", Permanent(errors.New("no response from Gemini"))
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", Permanent(fmt.Errorf("unexpected part type %T", resp.Candidates[0].Content.Parts[0]))
	}
	return string(text), nil
}

func classifyGeminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return Permanent(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return Transient(err)
		case apiErr.Code >= 500:
			return Transient(err)
		default:
			return Permanent(err)
		}
	}

	// Deadline expiry and network-level errors without a status are worth
	// a retry.
	return Transient(err)
}
