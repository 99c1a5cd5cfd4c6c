package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

const chatCompletionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "deepseek-chat",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}]
}`

func newChatServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChatBackend_Complete(t *testing.T) {
	ctx := context.Background()
	prompt := domain.Prompt{System: "You are an educational test creator.", User: "Write a question."}

	t.Run("success sends system prompt and options", func(t *testing.T) {
		var seen map[string]any
		srv := newChatServer(t, http.StatusOK, fmt.Sprintf(chatCompletionJSON, `"[{\"question\":\"Q?\"}]"`), &seen)

		b, err := NewOpenAIChatBackend(domain.BackendRemoteChat, "sk-test", srv.URL, "", 0)
		require.NoError(t, err)

		out, err := b.Complete(ctx, prompt, domain.CompletionOptions{Temperature: 0.7, MaxTokens: 500, JSON: true})
		require.NoError(t, err)
		assert.Equal(t, `[{"question":"Q?"}]`, out)

		assert.Equal(t, DefaultRemoteModel, seen["model"])
		assert.EqualValues(t, 500, seen["max_tokens"])
		assert.InDelta(t, 0.7, seen["temperature"], 1e-9)
		msgs := seen["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, map[string]any{"type": "json_object"}, seen["response_format"])
	})

	t.Run("rate limit is transient", func(t *testing.T) {
		srv := newChatServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, nil)
		b, err := NewOpenAIChatBackend(domain.BackendRemoteChat, "sk-test", srv.URL, "deepseek-chat", 0)
		require.NoError(t, err)

		_, err = b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrTransientBackend)
	})

	t.Run("bad key is permanent", func(t *testing.T) {
		srv := newChatServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid key","type":"auth"}}`, nil)
		b, err := NewOpenAIChatBackend(domain.BackendRemoteChat, "sk-test", srv.URL, "deepseek-chat", 0)
		require.NoError(t, err)

		_, err = b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrPermanentBackend)
	})

	t.Run("empty content is malformed", func(t *testing.T) {
		srv := newChatServer(t, http.StatusOK, fmt.Sprintf(chatCompletionJSON, `""`), nil)
		b, err := NewOpenAIChatBackend(domain.BackendRemoteChat, "sk-test", srv.URL, "deepseek-chat", 0)
		require.NoError(t, err)

		_, err = b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewOpenAIChatBackend(domain.BackendRemoteChat, "", "", "", 0)
		assert.Error(t, err)
	})
}

type fakeGemini struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
	user   string
}

func (f *fakeGemini) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.user = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func TestGeminiBackend_Complete(t *testing.T) {
	ctx := context.Background()
	prompt := domain.Prompt{System: "sys", User: "user text"}

	t.Run("joins text parts and skips thoughts", func(t *testing.T) {
		fake := &fakeGemini{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "world"},
			}}}},
		}}
		b := &GeminiBackend{id: domain.BackendRemoteChat, models: fake, model: DefaultGeminiModel}

		out, err := b.Complete(ctx, prompt, domain.CompletionOptions{Temperature: 0.5, MaxTokens: 100, JSON: true})
		require.NoError(t, err)
		assert.Equal(t, "Hello world", out)
		assert.Equal(t, DefaultGeminiModel, fake.model)
		assert.Equal(t, "user text", fake.user)
		assert.Equal(t, "sys", fake.config.SystemInstruction.Parts[0].Text)
		assert.Equal(t, int32(100), fake.config.MaxOutputTokens)
		assert.Equal(t, float32(0.5), *fake.config.Temperature)
		assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	})

	t.Run("api errors are classified", func(t *testing.T) {
		b := &GeminiBackend{id: domain.BackendRemoteChat, models: &fakeGemini{err: genai.APIError{Code: 503, Message: "overloaded"}}}
		_, err := b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrTransientBackend)

		b = &GeminiBackend{id: domain.BackendRemoteChat, models: &fakeGemini{err: genai.APIError{Code: 400, Message: "bad"}}}
		_, err = b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrPermanentBackend)
	})

	t.Run("no candidates", func(t *testing.T) {
		b := &GeminiBackend{id: domain.BackendRemoteChat, models: &fakeGemini{resp: &genai.GenerateContentResponse{}}}
		_, err := b.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})
}

type fakeModel struct {
	reply string
	err   error
	msgs  []llms.MessageContent
	opts  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.msgs = msgs
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	return m.Parts[0].(llms.TextContent).Text
}

func TestLangchainBackend_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("chat mode sends system and human parts", func(t *testing.T) {
		fake := &fakeModel{reply: "Question: Q? Answer: A"}
		b := NewLangchainBackend(domain.BackendLocalQA, fake, ModeChat)

		out, err := b.Complete(ctx, domain.Prompt{System: "sys", User: "usr"}, domain.CompletionOptions{Temperature: 0.7, MaxTokens: 200, MinLength: 30, JSON: true})
		require.NoError(t, err)
		assert.Equal(t, "Question: Q? Answer: A", out)
		require.Len(t, fake.msgs, 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, fake.msgs[0].Role)
		assert.Equal(t, "usr", textOf(t, fake.msgs[1]))
		assert.Equal(t, 0.7, fake.opts.Temperature)
		assert.Equal(t, 200, fake.opts.MaxTokens)
		assert.Equal(t, 200, fake.opts.MaxLength)
		assert.Equal(t, 30, fake.opts.MinLength)
		assert.True(t, fake.opts.JSONMode)
	})

	t.Run("text-to-text mode sends one prompt", func(t *testing.T) {
		fake := &fakeModel{reply: "A short summary."}
		b := NewLangchainBackend(domain.BackendLocalSummary, fake, ModeTextToText)

		out, err := b.Complete(ctx, domain.Prompt{User: "summarize: text"}, domain.CompletionOptions{})
		require.NoError(t, err)
		assert.Equal(t, "A short summary.", out)
		require.Len(t, fake.msgs, 1)
		assert.Equal(t, llms.ChatMessageTypeHuman, fake.msgs[0].Role)
		assert.Equal(t, "summarize: text", textOf(t, fake.msgs[0]))
		assert.False(t, fake.opts.JSONMode)
	})

	t.Run("blank output is malformed", func(t *testing.T) {
		b := NewLangchainBackend(domain.BackendLocalQA, &fakeModel{reply: "  "}, ModeChat)
		_, err := b.Complete(ctx, domain.Prompt{User: "x"}, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("connection errors are transient", func(t *testing.T) {
		b := NewLangchainBackend(domain.BackendLocalQA, &fakeModel{err: errors.New("dial tcp: connection refused")}, ModeTextToText)
		_, err := b.Complete(ctx, domain.Prompt{User: "x"}, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrTransientBackend)
	})

	t.Run("ollama constructor validation", func(t *testing.T) {
		_, err := NewOllamaBackend(domain.BackendLocalQA, "", "flan-t5", 0, ModeTextToText)
		assert.Error(t, err)
		_, err = NewOllamaBackend(domain.BackendLocalQA, "http://localhost:11434", "", 0, ModeTextToText)
		assert.Error(t, err)
	})
}
