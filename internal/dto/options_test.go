package dto

import (
	"testing"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got, errs := ParseOptions(nil)
		assert.Empty(t, errs)
		assert.Equal(t, domain.DefaultGenerationParams(), got.Params)
		assert.Equal(t, FormatText, got.Format)
	})

	t.Run("coerces strings and numbers", func(t *testing.T) {
		got, errs := ParseOptions(map[string]interface{}{
			"temperature":        "0.2",
			"max_length":         float64(120),
			"words_per_question": "50",
			"summary_mode":       "Sectioned",
			"format":             "HTML",
		})
		require.Empty(t, errs)
		assert.Equal(t, 0.2, got.Params.Temperature)
		assert.Equal(t, 120, got.Params.MaxLength)
		assert.Equal(t, 50, got.Params.WordsPerQuestion)
		assert.Equal(t, domain.SummaryModeSectioned, got.Params.SummaryMode)
		assert.Equal(t, FormatHTML, got.Format)
	})

	t.Run("reports bad values", func(t *testing.T) {
		got, errs := ParseOptions(map[string]interface{}{
			"temperature": "warm",
			"max_length":  []int{1},
		})
		require.Len(t, errs, 2)
		assert.Equal(t, "options.temperature", errs[0].Field)
		assert.Equal(t, domain.CodeInvalidFormat, errs[1].Code)
		assert.Equal(t, 0.7, got.Params.Temperature)
	})

	t.Run("rejects non-finite temperature", func(t *testing.T) {
		for _, v := range []interface{}{"NaN", "+Inf", "-inf"} {
			got, errs := ParseOptions(map[string]interface{}{"temperature": v})
			require.Len(t, errs, 1, "value %v", v)
			assert.Equal(t, "options.temperature", errs[0].Field)
			assert.Equal(t, 0.7, got.Params.Temperature)
		}
	})
}

func TestNewContentResponse_EmptyLists(t *testing.T) {
	resp := NewContentResponse(&domain.GeneratedContent{OriginalText: "t"})
	assert.NotNil(t, resp.TestQuestions)
	assert.NotNil(t, resp.Flashcards)
}
