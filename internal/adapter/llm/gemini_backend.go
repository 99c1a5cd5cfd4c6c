package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"study-byte/internal/domain"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// geminiModels is the slice of *genai.Models the backend uses.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend is the Google Gemini alternative for the remote tier.
type GeminiBackend struct {
	id      domain.BackendID
	models  geminiModels
	model   string
	timeout time.Duration
}

func NewGeminiBackend(ctx context.Context, id domain.BackendID, apiKey, model string, timeout time.Duration) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiBackend{id: id, models: client.Models, model: model, timeout: timeout}, nil
}

func (b *GeminiBackend) ID() domain.BackendID { return b.id }

func (b *GeminiBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(prompt.User), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.Code, err)
		}
		return "", classifyTransport(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", emptyResponse(b.id)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", emptyResponse(b.id)
	}
	return text.String(), nil
}

var _ domain.CompletionBackend = (*GeminiBackend)(nil)
