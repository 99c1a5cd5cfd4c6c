package heuristic

import (
	"strings"
	"testing"

	"study-byte/internal/quiz"

	"github.com/neurosnap/sentences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// periodTokenizer splits on ". " so expectations do not depend on the
// Punkt model.
type periodTokenizer struct{}

func (periodTokenizer) Tokenize(text string) []*sentences.Sentence {
	var out []*sentences.Sentence
	parts := strings.Split(text, ". ")
	for i, p := range parts {
		if i < len(parts)-1 {
			p += "."
		}
		out = append(out, &sentences.Sentence{Text: p})
	}
	return out
}

func newTestGenerator() *Generator {
	return NewGenerator(&Splitter{tokenizer: periodTokenizer{}}, quiz.NewAssembler())
}

func TestNewSplitter_Punkt(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	got := s.Sentences("The cat sat on the mat. The dog barked at the mailman.\n\nOverview:\nBirds fly south in winter.")
	assert.Equal(t, []string{
		"The cat sat on the mat.",
		"The dog barked at the mailman.",
		"Overview:",
		"Birds fly south in winter.",
	}, got)
}

func TestQuestionCount(t *testing.T) {
	words := func(n int) string { return strings.Repeat("word ", n) }

	assert.Equal(t, 1, QuestionCount(words(10), 10, 100))
	assert.Equal(t, 3, QuestionCount(words(350), 10, 100))
	assert.Equal(t, 10, QuestionCount(words(5000), 10, 100))
	assert.Equal(t, 5, QuestionCount(words(150), 10, 30))
	assert.Equal(t, 1, QuestionCount("", 10, 0))
}

func TestSummarize(t *testing.T) {
	g := newTestGenerator()

	var parts []string
	for i := 0; i < 10; i++ {
		parts = append(parts, "Sentence "+string(rune('A'+i)))
	}
	text := strings.Join(parts, ". ") + "."

	assert.Equal(t, "Sentence A. Sentence D. Sentence G. Sentence J.", g.Summarize(text))
	assert.Equal(t, "Only one.", g.Summarize("Only one."))
	assert.Equal(t, "First. Second.", g.Summarize("Heading:\nFirst. Second"))
	assert.Equal(t, EmptySummary, g.Summarize("  \n "))
}

func TestFlashcards(t *testing.T) {
	g := newTestGenerator()
	text := "▪️ RFID (Radio Frequency Identification): Tracks products throughout the supply chain.\n" +
		"Demand Forecasting: Uses predictive analytics to forecast future demand.\n" +
		"Information technology reshapes how modern businesses operate every day."

	t.Run("definitions first", func(t *testing.T) {
		cards := g.Flashcards(text, 2)
		require.Len(t, cards, 2)
		assert.Equal(t, "What is RFID (Radio Frequency Identification)?", cards[0].Front)
		assert.Equal(t, "Tracks products throughout the supply chain.", cards[0].Back)
		assert.Equal(t, "What is Demand Forecasting?", cards[1].Front)
	})

	t.Run("explain cards fill the rest", func(t *testing.T) {
		cards := g.Flashcards(text, 5)
		require.Len(t, cards, 3)
		assert.Equal(t, "Explain: Information technology reshapes...", cards[2].Front)
		for _, c := range cards {
			assert.True(t, c.Valid())
		}
	})

	t.Run("nothing usable", func(t *testing.T) {
		assert.Empty(t, g.Flashcards("Short.", 3))
	})
}

func TestTestQuestions(t *testing.T) {
	g := newTestGenerator()
	text := "SEO: Enhances online visibility and attracts organic traffic.\n" +
		"Email Marketing: Automates personalized communication with customers.\n" +
		"Social Media Tools: Platforms that let businesses share targeted ads.\n" +
		"Cloud computing lets companies rent servers instead of buying them outright."

	questions := g.TestQuestions(text, 4)
	require.Len(t, questions, 4)

	assert.Equal(t, "What is SEO?", questions[0].Question)
	assert.Equal(t, "Enhances online visibility and attracts organic traffic.", questions[0].CorrectAnswer())
	assert.Equal(t, `Which statement about "Cloud computing lets" is correct?`, questions[3].Question)
	assert.Equal(t, "companies rent servers instead of buying them outright.", questions[3].CorrectAnswer())

	for _, q := range questions {
		require.NoError(t, q.Validate())
	}
}

func TestTestQuestions_Empty(t *testing.T) {
	g := newTestGenerator()
	assert.Empty(t, g.TestQuestions("Too short", 3))
}
