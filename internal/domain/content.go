package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactKind selects what a GenerationRequest produces.
type ArtifactKind string

const (
	KindTest      ArtifactKind = "TEST"
	KindFlashcard ArtifactKind = "FLASHCARD"
	KindSummary   ArtifactKind = "SUMMARY"
)

// SummaryMode controls how the local summarizer tier composes its output.
type SummaryMode string

const (
	SummaryModeAuto      SummaryMode = "auto"
	SummaryModeFlat      SummaryMode = "flat"
	SummaryModeSectioned SummaryMode = "sectioned"
)

// OptionCount is the fixed number of options on every test question.
const OptionCount = 4

// GenerationParams tunes a single request.
type GenerationParams struct {
	Temperature      float64     `json:"temperature"`
	MaxLength        int         `json:"max_length"`
	WordsPerQuestion int         `json:"words_per_question"`
	SummaryMode      SummaryMode `json:"summary_mode"`
}

// DefaultGenerationParams returns the values used when a request leaves them unset.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:      0.7,
		MaxLength:        300,
		WordsPerQuestion: 100,
		SummaryMode:      SummaryModeAuto,
	}
}

// GenerationRequest is issued once per call and never mutated afterwards.
type GenerationRequest struct {
	SourceText string
	ItemCount  int
	Kind       ArtifactKind
	Params     GenerationParams
}

// TestQuestion is a multiple-choice question with exactly OptionCount options.
type TestQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// CorrectAnswer returns the option at CorrectIndex, or "" when the index is out of range.
func (q TestQuestion) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Validate checks the structural invariants of a question.
func (q TestQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question text is empty", ErrMalformedResponse)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: expected %d options, got %d", ErrMalformedResponse, OptionCount, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return fmt.Errorf("%w: correct_index %d out of range", ErrMalformedResponse, q.CorrectIndex)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" {
			return fmt.Errorf("%w: empty option", ErrMalformedResponse)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrMalformedResponse, opt)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Flashcard is a two-sided study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Valid reports whether both sides carry text.
func (f Flashcard) Valid() bool {
	return strings.TrimSpace(f.Front) != "" && strings.TrimSpace(f.Back) != ""
}

// SectionedSummary is an overview plus one bullet list per heading found in
// the source text. SectionOrder keeps the headings in document order.
type SectionedSummary struct {
	Overview     []string            `json:"overview"`
	Sections     map[string][]string `json:"sections"`
	SectionOrder []string            `json:"section_order"`
}

// Summary holds either a flat text or a sectioned result. Text is always
// populated with the rendered form so callers can treat it as a string.
type Summary struct {
	Text      string            `json:"text"`
	Sectioned *SectionedSummary `json:"sectioned,omitempty"`
	Degraded  bool              `json:"degraded"`
}

// Artifact is what the orchestrator hands back for one request.
type Artifact struct {
	Kind       ArtifactKind   `json:"kind"`
	Tests      []TestQuestion `json:"test_questions,omitempty"`
	Flashcards []Flashcard    `json:"flashcards,omitempty"`
	Summary    *Summary       `json:"summary,omitempty"`
	Tier       string         `json:"tier"`
	Degraded   bool           `json:"degraded"`
}

// GeneratedContent is the document written by the export path. The JSON
// shape (original_text, summary, test_questions, flashcards) is consumed
// downstream and must not change.
type GeneratedContent struct {
	ID            string         `json:"-"`
	OriginalText  string         `json:"original_text"`
	Summary       string         `json:"summary"`
	TestQuestions []TestQuestion `json:"test_questions"`
	Flashcards    []Flashcard    `json:"flashcards"`
	CreatedAt     time.Time      `json:"-"`
}
