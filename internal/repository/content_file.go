package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"study-byte/internal/domain"
)

// ExportContent encodes content as the indented four-field document
// (original_text, summary, test_questions, flashcards). Nil lists are
// written as empty arrays.
func ExportContent(content *domain.GeneratedContent) ([]byte, error) {
	if content == nil {
		return nil, fmt.Errorf("cannot export nil content")
	}
	doc := *content
	if doc.TestQuestions == nil {
		doc.TestQuestions = []domain.TestQuestion{}
	}
	if doc.Flashcards == nil {
		doc.Flashcards = []domain.Flashcard{}
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	return data, nil
}

// WriteContentFile writes the exported document to path, creating parent
// directories as needed.
func WriteContentFile(path string, content *domain.GeneratedContent) error {
	data, err := ExportContent(content)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadContentFile loads a document written by WriteContentFile.
func ReadContentFile(path string) (*domain.GeneratedContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var content domain.GeneratedContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &content, nil
}
