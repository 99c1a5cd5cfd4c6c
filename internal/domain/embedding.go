package domain

import (
	"context"
)

// EmbeddingService turns text into a vector. It is used to spot
// near-duplicate generated questions.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
