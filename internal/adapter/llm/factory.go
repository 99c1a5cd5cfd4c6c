package llm

import (
	"context"
	"fmt"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"go.uber.org/zap"
)

// BuildRegistry constructs every backend the configuration describes.
// Construction failures mark the backend unavailable instead of failing
// start-up, so the pipeline degrades to the tiers that remain. c may be
// nil, in which case no completion is cached.
func BuildRegistry(ctx context.Context, cfg config.LLMConfig, c domain.Cache, logger *zap.Logger) *Registry {
	reg := NewRegistry(logger)

	wrap := func(b domain.CompletionBackend) domain.CompletionBackend {
		b = NewRetryingBackend(b, cfg.Retry.MaxAttempts, cfg.Retry.InitialDelay, logger)
		if cfg.Cache.Enabled && c != nil {
			b = NewCachedBackend(b, c, cfg.Cache.TTL, logger)
		}
		return b
	}

	if remote, err := newRemoteBackend(ctx, cfg.Remote); err != nil {
		reg.MarkUnavailable(domain.BackendRemoteChat, err.Error())
	} else {
		reg.Register(wrap(remote))
	}

	locals := []struct {
		id    domain.BackendID
		model string
	}{
		{domain.BackendLocalQA, cfg.Local.QAModel},
		{domain.BackendLocalDistractor, cfg.Local.DistractorModel},
		{domain.BackendLocalSummary, cfg.Local.SummaryModel},
	}
	for _, l := range locals {
		if l.model == "" {
			reg.MarkUnavailable(l.id, "no model configured")
			continue
		}
		b, err := NewOllamaBackend(l.id, cfg.Local.ServerURL, l.model, cfg.Local.Timeout, ModeTextToText)
		if err != nil {
			reg.MarkUnavailable(l.id, err.Error())
			continue
		}
		reg.Register(wrap(b))
	}

	logger.Info("Completion backends initialised", zap.Any("status", reg.Status()))
	return reg
}

func newRemoteBackend(ctx context.Context, cfg config.RemoteLLMConfig) (domain.CompletionBackend, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIChatBackend(domain.BackendRemoteChat, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	case "gemini":
		return NewGeminiBackend(ctx, domain.BackendRemoteChat, cfg.APIKey, cfg.Model, cfg.Timeout)
	case "langchain":
		return NewOpenAICompatibleBackend(domain.BackendRemoteChat, cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown remote provider %q", cfg.Provider)
	}
}
