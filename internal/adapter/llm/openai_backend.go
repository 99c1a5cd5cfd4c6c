package llm

import (
	"context"
	"errors"
	"time"

	"study-byte/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultRemoteBaseURL = "https://api.deepseek.com/v1"
	DefaultRemoteModel   = "deepseek-chat"
)

// OpenAIChatBackend talks to any OpenAI-compatible chat completion API.
// DeepSeek is the default target.
type OpenAIChatBackend struct {
	id      domain.BackendID
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIChatBackend builds the client. Retries are left to
// RetryingBackend, so the SDK's own retry loop is disabled.
func NewOpenAIChatBackend(id domain.BackendID, apiKey, baseURL, model string, timeout time.Duration) (*OpenAIChatBackend, error) {
	if apiKey == "" {
		return nil, errors.New("openai-compatible api key missing")
	}
	if baseURL == "" {
		baseURL = DefaultRemoteBaseURL
	}
	if model == "" {
		model = DefaultRemoteModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &OpenAIChatBackend{id: id, client: client, model: model, timeout: timeout}, nil
}

func (b *OpenAIChatBackend) ID() domain.BackendID { return b.id }

func (b *OpenAIChatBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(b.model),
		Messages:    msgs,
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.StatusCode, err)
		}
		return "", classifyTransport(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", emptyResponse(b.id)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ domain.CompletionBackend = (*OpenAIChatBackend)(nil)
