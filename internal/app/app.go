// Package app assembles the generation pipeline from configuration. It is
// shared by the HTTP server and the batch command.
package app

import (
	"context"
	"errors"
	"fmt"

	"study-byte/internal/adapter"
	"study-byte/internal/adapter/embedding"
	"study-byte/internal/adapter/llm"
	"study-byte/internal/cache"
	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/heuristic"
	"study-byte/internal/quiz"
	"study-byte/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Components are the process-lifetime objects behind every request.
type Components struct {
	Registry *llm.Registry
	Service  domain.GenerationService
	// Cache is nil when Redis is not configured or unreachable.
	Cache domain.Cache

	redis *redis.Client
}

// Build wires the pipeline. Redis and the embedder are optional: a
// missing or unreachable Redis disables caching, and an empty embedding
// source disables near-duplicate detection. Only an unknown embedding
// source is an error.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	comps := &Components{}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			logger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
			comps.redis = client
			comps.Cache = adapter.NewRedisCacheAdapter(client)
		}
	}

	embedder, err := newEmbeddingService(cfg, comps.Cache, logger)
	if err != nil {
		comps.Close()
		return nil, err
	}

	splitter, err := heuristic.NewSplitter()
	if err != nil {
		comps.Close()
		return nil, err
	}

	comps.Registry = llm.BuildRegistry(ctx, cfg.LLM, comps.Cache, logger.Named("llm"))
	assembler := quiz.NewAssembler()
	comps.Service = service.NewGenerationService(
		comps.Registry,
		heuristic.NewGenerator(splitter, assembler),
		assembler,
		embedder,
		cfg.Generation,
		logger.Named("generation"),
	)
	return comps, nil
}

// newEmbeddingService returns a nil interface when embeddings are disabled.
func newEmbeddingService(cfg *config.Config, c domain.Cache, logger *zap.Logger) (domain.EmbeddingService, error) {
	switch cfg.Embedding.Source {
	case "":
		logger.Info("Embedding source not set, near-duplicate detection disabled")
		return nil, nil
	case "ollama":
		logger.Info("Initializing Ollama Embedding Service",
			zap.String("server_url", cfg.Embedding.Ollama.ServerURL),
			zap.String("model", cfg.Embedding.Ollama.Model),
		)
		svc, err := embedding.NewOllamaEmbeddingService(cfg.Embedding.Ollama.ServerURL, cfg.Embedding.Ollama.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama embedding service: %w", err)
		}
		return svc, nil
	case "openai":
		logger.Info("Initializing OpenAI Embedding Service", zap.String("model", cfg.Embedding.OpenAI.Model))
		svc, err := embedding.NewOpenAIEmbeddingService(cfg.Embedding.OpenAI.APIKey, cfg.Embedding.OpenAI.Model, c, cfg.LLM.Cache.TTL, logger.Named("embedding"))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding service: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unsupported embedding source: %q", cfg.Embedding.Source)
	}
}

// Close releases the Redis connection, if any.
func (c *Components) Close() error {
	if c.redis == nil {
		return nil
	}
	err := c.redis.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
