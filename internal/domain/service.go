package domain

import "context"

// GenerationService produces learning artifacts. None of its generation
// methods return errors: a degraded placeholder is returned instead.
type GenerationService interface {
	Generate(ctx context.Context, req GenerationRequest) Artifact
	GenerateTests(ctx context.Context, text string, count int, params GenerationParams) Artifact
	GenerateFlashcards(ctx context.Context, text string, count int, params GenerationParams) Artifact
	GenerateSummary(ctx context.Context, text string, params GenerationParams) Artifact
	ProcessContent(ctx context.Context, text string, count int, params GenerationParams) *GeneratedContent
}

// ContentRepository persists generated documents.
type ContentRepository interface {
	Save(ctx context.Context, content *GeneratedContent) error
	GetByID(ctx context.Context, id string) (*GeneratedContent, error)
	List(ctx context.Context, limit, offset int) ([]*GeneratedContent, error)
}
