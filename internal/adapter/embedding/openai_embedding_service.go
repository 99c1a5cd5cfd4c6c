package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"study-byte/internal/cache"
	"study-byte/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultOpenAIEmbeddingModel = "text-embedding-3-small"

// OpenAIEmbeddingService embeds text through the OpenAI API. Vectors are
// cached gob-encoded when a cache is configured, since the same question
// texts come back on every regeneration.
type OpenAIEmbeddingService struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	ttl      time.Duration
	model    string
	sfGroup  singleflight.Group
	logger   *zap.Logger
}

// NewOpenAIEmbeddingService creates the service. cache may be nil.
func NewOpenAIEmbeddingService(apiKey, modelName string, c domain.Cache, ttl time.Duration, logger *zap.Logger) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = defaultOpenAIEmbeddingModel
	}
	if c != nil && ttl <= 0 {
		return nil, fmt.Errorf("embedding cache TTL must be positive")
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithEmbeddingModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder from OpenAI client: %w", err)
	}

	return &OpenAIEmbeddingService{
		embedder: embedder,
		cache:    c,
		ttl:      ttl,
		model:    modelName,
		logger:   logger,
	}, nil
}

func (s *OpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	cacheKey := cache.GenerateCacheKey("embedding", "openai", cache.HashString(text), s.model)
	if vec, ok := s.lookup(ctx, cacheKey); ok {
		return vec, nil
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		vec, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("received empty embedding from OpenAI")
		}
		s.store(ctx, cacheKey, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

func (s *OpenAIEmbeddingService) lookup(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var vec []float32
	if err := gob.NewDecoder(bytes.NewReader([]byte(data))).Decode(&vec); err != nil {
		s.logger.Warn("Discarding undecodable cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (s *OpenAIEmbeddingService) store(ctx context.Context, key string, vec []float32) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
		s.logger.Warn("Failed to encode embedding for caching", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, buf.String(), s.ttl); err != nil {
		s.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

var _ domain.EmbeddingService = (*OpenAIEmbeddingService)(nil)
