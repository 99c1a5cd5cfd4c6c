package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"study-byte/internal/domain"
)

// JSONList stores a slice in a single JSONB column.
type JSONList[T any] []T

// Value implements the driver.Valuer interface
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		// nil is stored as an empty array so reads never see NULL
		return "[]", nil
	}
	data, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (l *JSONList[T]) Scan(value interface{}) error {
	if value == nil {
		*l = JSONList[T]{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("JSONList Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = JSONList[T]{}
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("JSONList Scan: %w", err)
	}
	*l = items
	return nil
}

// GeneratedContent is a row of generated_contents.
type GeneratedContent struct {
	ID            string                        `db:"id"`
	OriginalText  string                        `db:"original_text"`
	Summary       string                        `db:"summary"`
	TestQuestions JSONList[domain.TestQuestion] `db:"test_questions"`
	Flashcards    JSONList[domain.Flashcard]    `db:"flashcards"`
	CreatedAt     time.Time                     `db:"created_at"`
}

func (GeneratedContent) TableName() string {
	return "generated_contents"
}
