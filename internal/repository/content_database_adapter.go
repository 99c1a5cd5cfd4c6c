package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"study-byte/internal/domain"
	"study-byte/internal/repository/models"
	"study-byte/internal/util"

	"github.com/jmoiron/sqlx"
)

// ContentDatabaseAdapter implements domain.ContentRepository on Postgres.
type ContentDatabaseAdapter struct {
	db  DBTX
	now func() time.Time
}

func NewContentDatabaseAdapter(db *sqlx.DB) domain.ContentRepository {
	return &ContentDatabaseAdapter{db: db, now: time.Now}
}

// Save inserts content, assigning a ULID and creation time when unset.
func (a *ContentDatabaseAdapter) Save(ctx context.Context, content *domain.GeneratedContent) error {
	if content == nil {
		return fmt.Errorf("cannot save nil content")
	}
	if content.ID == "" {
		content.ID = util.NewULID()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = a.now()
	}
	row := toModelContent(content)

	query := `INSERT INTO generated_contents (
		id, original_text, summary, test_questions, flashcards, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		row.ID,
		row.OriginalText,
		row.Summary,
		row.TestQuestions,
		row.Flashcards,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save generated content: %w", err)
	}
	return nil
}

// GetByID returns a content-not-found DomainError for unknown ids.
func (a *ContentDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.GeneratedContent, error) {
	var row models.GeneratedContent
	query := `SELECT id, original_text, summary, test_questions, flashcards, created_at
	FROM generated_contents
	WHERE id = $1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewContentNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get generated content %s: %w", id, err)
	}
	return toDomainContent(&row), nil
}

// List returns the most recent documents first.
func (a *ContentDatabaseAdapter) List(ctx context.Context, limit, offset int) ([]*domain.GeneratedContent, error) {
	var rows []models.GeneratedContent
	query := `SELECT id, original_text, summary, test_questions, flashcards, created_at
	FROM generated_contents
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list generated content: %w", err)
	}
	out := make([]*domain.GeneratedContent, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainContent(&rows[i]))
	}
	return out, nil
}

func toModelContent(c *domain.GeneratedContent) *models.GeneratedContent {
	return &models.GeneratedContent{
		ID:            c.ID,
		OriginalText:  c.OriginalText,
		Summary:       c.Summary,
		TestQuestions: models.JSONList[domain.TestQuestion](c.TestQuestions),
		Flashcards:    models.JSONList[domain.Flashcard](c.Flashcards),
		CreatedAt:     c.CreatedAt,
	}
}

func toDomainContent(m *models.GeneratedContent) *domain.GeneratedContent {
	return &domain.GeneratedContent{
		ID:            m.ID,
		OriginalText:  m.OriginalText,
		Summary:       m.Summary,
		TestQuestions: []domain.TestQuestion(m.TestQuestions),
		Flashcards:    []domain.Flashcard(m.Flashcards),
		CreatedAt:     m.CreatedAt,
	}
}
