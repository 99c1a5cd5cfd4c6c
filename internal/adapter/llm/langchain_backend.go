package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"study-byte/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

// Mode picks how a LangchainBackend sends the prompt.
type Mode int

const (
	// ModeChat sends system and human message parts.
	ModeChat Mode = iota
	// ModeTextToText sends one flat prompt, for seq2seq-style local models.
	ModeTextToText
)

// LangchainBackend runs any langchaingo model.
type LangchainBackend struct {
	id   domain.BackendID
	llm  llms.Model
	mode Mode
}

func NewLangchainBackend(id domain.BackendID, model llms.Model, mode Mode) *LangchainBackend {
	return &LangchainBackend{id: id, llm: model, mode: mode}
}

// NewOllamaBackend connects to a model served by Ollama. The HTTP client
// timeout bounds every call.
func NewOllamaBackend(id domain.BackendID, serverURL, model string, timeout time.Duration, mode Mode) (*LangchainBackend, error) {
	if serverURL == "" {
		return nil, errors.New("ollama server URL cannot be empty")
	}
	if model == "" {
		return nil, errors.New("ollama model name cannot be empty")
	}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, err
	}
	return NewLangchainBackend(id, llm, mode), nil
}

// NewOpenAICompatibleBackend serves the remote tier through langchaingo
// instead of openai-go.
func NewOpenAICompatibleBackend(id domain.BackendID, apiKey, baseURL, model string) (*LangchainBackend, error) {
	if apiKey == "" {
		return nil, errors.New("openai-compatible api key missing")
	}
	opts := []openaiLLM.Option{openaiLLM.WithToken(apiKey), openaiLLM.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(baseURL))
	}
	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangchainBackend(id, llm, ModeChat), nil
}

func (b *LangchainBackend) ID() domain.BackendID { return b.id }

func (b *LangchainBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	callOpts := callOptions(opts)

	if b.mode == ModeTextToText {
		input := prompt.User
		if prompt.System != "" {
			input = prompt.System + "\n\n" + prompt.User
		}
		out, err := llms.GenerateFromSinglePrompt(ctx, b.llm, input, callOpts...)
		if err != nil {
			return "", classifyTransport(err)
		}
		if strings.TrimSpace(out) == "" {
			return "", emptyResponse(b.id)
		}
		return out, nil
	}

	var msgs []llms.MessageContent
	if prompt.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, prompt.User))

	resp, err := b.llm.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return "", classifyTransport(err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", emptyResponse(b.id)
	}
	return resp.Choices[0].Content, nil
}

func callOptions(opts domain.CompletionOptions) []llms.CallOption {
	out := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		out = append(out, llms.WithMaxTokens(opts.MaxTokens), llms.WithMaxLength(opts.MaxTokens))
	}
	if opts.MinLength > 0 {
		out = append(out, llms.WithMinLength(opts.MinLength))
	}
	if opts.JSON {
		out = append(out, llms.WithJSONMode())
	}
	return out
}

var _ domain.CompletionBackend = (*LangchainBackend)(nil)
