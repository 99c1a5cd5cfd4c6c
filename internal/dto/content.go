package dto

import "study-byte/internal/domain"

// GenerateRequest is the body of every generation endpoint.
// @Description Source text plus optional generation settings
type GenerateRequest struct {
	Text  string `json:"text" example:"SEO: Enhances online visibility and attracts organic traffic."`
	Count int    `json:"count" example:"5"`
	// Options holds loosely typed settings: temperature, max_length,
	// words_per_question, summary_mode and format. Numbers may arrive as
	// strings.
	Options map[string]interface{} `json:"options,omitempty" swaggertype:"object"`
}

// TestsResponse is returned by POST /api/tests
type TestsResponse struct {
	Tier      string                `json:"tier"`
	Degraded  bool                  `json:"degraded"`
	Questions []domain.TestQuestion `json:"questions"`
}

// FlashcardsResponse is returned by POST /api/flashcards
type FlashcardsResponse struct {
	Tier       string             `json:"tier"`
	Degraded   bool               `json:"degraded"`
	Flashcards []domain.Flashcard `json:"flashcards"`
}

// SummaryResponse is returned by POST /api/summary. HTML is set only when
// options.format is "html".
type SummaryResponse struct {
	Tier      string                   `json:"tier"`
	Degraded  bool                     `json:"degraded"`
	Summary   string                   `json:"summary"`
	Sectioned *domain.SectionedSummary `json:"sectioned,omitempty"`
	HTML      string                   `json:"html,omitempty"`
}

// ContentResponse is the processed document. ID is set once it is stored.
type ContentResponse struct {
	ID            string                `json:"id,omitempty"`
	OriginalText  string                `json:"original_text"`
	Summary       string                `json:"summary"`
	TestQuestions []domain.TestQuestion `json:"test_questions"`
	Flashcards    []domain.Flashcard    `json:"flashcards"`
}

// ContentListResponse is returned by GET /api/content
type ContentListResponse struct {
	Items  []ContentResponse `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// HealthResponse reports every backend and whether storage is wired.
type HealthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
	Storage  string            `json:"storage"`
}

// NewContentResponse copies c, turning nil lists into empty arrays.
func NewContentResponse(c *domain.GeneratedContent) ContentResponse {
	resp := ContentResponse{
		ID:            c.ID,
		OriginalText:  c.OriginalText,
		Summary:       c.Summary,
		TestQuestions: c.TestQuestions,
		Flashcards:    c.Flashcards,
	}
	if resp.TestQuestions == nil {
		resp.TestQuestions = []domain.TestQuestion{}
	}
	if resp.Flashcards == nil {
		resp.Flashcards = []domain.Flashcard{}
	}
	return resp
}
