package app

import (
	"context"
	"testing"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild_HeuristicOnly(t *testing.T) {
	cfg := &config.Config{
		Generation: config.GenerationConfig{DefaultCount: 3, DedupThreshold: 0.92},
		LLM:        config.LLMConfig{Remote: config.RemoteLLMConfig{Provider: "openai"}},
	}

	comps, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer comps.Close()

	assert.Nil(t, comps.Cache)
	status := comps.Registry.Status()
	assert.Contains(t, status[string(domain.BackendLocalQA)], "unavailable")

	art := comps.Service.GenerateFlashcards(context.Background(),
		"SEO: Enhances online visibility and attracts organic traffic.", 1, domain.DefaultGenerationParams())
	assert.Equal(t, "heuristic", art.Tier)
	require.Len(t, art.Flashcards, 1)
}

func TestBuild_UnknownEmbeddingSource(t *testing.T) {
	cfg := &config.Config{Embedding: config.EmbeddingConfig{Source: "word2vec"}}
	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported embedding source: "word2vec"`)
}
