package summarize

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend summarizes through the OpenAI chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBackend{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Summarize(ctx context.Context, title, body string, maxChars int) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write terse, factual news synopses.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(title, body, maxChars),
			},
		},
		MaxTokens:   maxChars/2 + 128,
		Temperature: 0.2,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", Permanent(errors.New("no choices in OpenAI response"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", Permanent(errors.New("content rejected by policy filter"))
	}
	return choice.Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return Transient(err)
		case apiErr.HTTPStatusCode >= 500:
			return Transient(err)
		default:
			return Permanent(err)
		}
	}

	return Transient(err)
}
