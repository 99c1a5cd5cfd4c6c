package extract

import (
	"strings"
	"testing"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_EmbeddedObjectWithNoise(t *testing.T) {
	raw := `garbage {"question":"Q","options":["a","b","c","d"],"correct_index":1} trailing`

	for _, shape := range []Shape{ShapeTestObject, ShapeTestList} {
		t.Run(shape.String(), func(t *testing.T) {
			res := Extract(raw, shape)
			require.True(t, res.OK())
			assert.Equal(t, StrategyJSON, res.Strategy)
			require.Len(t, res.Questions, 1)

			q := res.Questions[0]
			assert.Equal(t, "Q", q.Question)
			assert.Equal(t, []string{"a", "b", "c", "d"}, q.Options)
			assert.Equal(t, 1, q.CorrectIndex)
			assert.Equal(t, "b", q.Correct())
			assert.Equal(t, []string{"a", "c", "d"}, q.Distractors())
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	raw := `[{"question":"What is Go?","options":["A language","A game","A verb","A river"],"correct_index":0},
	{"question":"Who made Go?","options":["Google","Apple","IBM","Sun"],"correct_answer":"Google"}]`

	first := Extract(raw, ShapeTestList)
	second := Extract(raw, ShapeTestList)
	require.True(t, first.OK())
	assert.Equal(t, first, second)
	require.Len(t, first.Questions, 2)
	assert.Equal(t, 0, first.Questions[1].CorrectIndex)
}

func TestExtract_TestListStripsFencesAndThinking(t *testing.T) {
	raw := "<think>let me plan the questions</think>\n```json\n" +
		`[{"question":"Q1","options":["w","x","y","z"],"correct_index":3}]` + "\n```"

	res := Extract(raw, ShapeTestList)
	require.True(t, res.OK())
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "z", res.Questions[0].Correct())
}

func TestExtract_TestListCorrectAnswerForms(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantIndex int
		wantText  string
	}{
		{name: "letter", answer: `"C"`, wantIndex: 2, wantText: "y"},
		{name: "number", answer: `1`, wantIndex: 1, wantText: "x"},
		{name: "text", answer: `"Z"`, wantIndex: 3, wantText: "z"},
		{name: "unknown text", answer: `"something else"`, wantIndex: -1, wantText: "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `[{"question":"Q","options":["w","x","y","z"],"correct_answer":` + tt.answer + `}]`
			res := Extract(raw, ShapeTestList)
			require.True(t, res.OK())
			assert.Equal(t, tt.wantIndex, res.Questions[0].CorrectIndex)
			assert.Equal(t, tt.wantText, res.Questions[0].Correct())
		})
	}

	t.Run("mixed correct_index types", func(t *testing.T) {
		raw := `[
			{"question":"Q1","options":["w","x","y","z"],"correct_index":0},
			{"question":"Q2","options":["w","x","y","z"],"correct_index":"1"},
			{"question":"Q3","options":["w","x","y","z"],"correct_index":"C"},
			{"question":"Q4","options":["w","x","y","z"],"correct_index":{"bad":true}},
			{"question":"Q5","options":["w","x","y","z"],"correct_index":"nine","correct_answer":"z"}
		]`
		res := Extract(raw, ShapeTestList)
		require.True(t, res.OK())
		assert.Equal(t, StrategyJSON, res.Strategy)
		require.Len(t, res.Questions, 4)

		got := map[string]string{}
		for _, q := range res.Questions {
			got[q.Question] = q.Correct()
		}
		assert.Equal(t, map[string]string{"Q1": "w", "Q2": "x", "Q3": "y", "Q5": "z"}, got)
	})
}

func TestExtract_TestListLineScannerAnswerForms(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
		ok     bool
	}{
		{name: "upper letter", answer: "Correct answer: C", want: "Berlin", ok: true},
		{name: "lower letter alone", answer: "Answer: b", want: "Madrid", ok: true},
		{name: "lower marker", answer: "Answer: (d) Rome", want: "Rome", ok: true},
		{name: "option text", answer: "Answer: paris.", want: "Paris", ok: true},
		{name: "article is not a letter", answer: "Answer: it is a city", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "Question: Which city?\na) Paris\nb) Madrid\nc) Berlin\nd) Rome\n" + tt.answer
			res := Extract(raw, ShapeTestObject)
			if !tt.ok {
				assert.False(t, res.OK())
				return
			}
			require.True(t, res.OK())
			assert.Equal(t, tt.want, res.Questions[0].Correct())
		})
	}
}

func TestExtract_TestListLineScanner(t *testing.T) {
	raw := `Here are your questions.

Question 1: What does CPU stand for?
A. Central Processing Unit
B. Computer Personal Unit
C) Central Print Utility
D) Core Power Unit
Correct answer: A

**Question 2:** Which company created Go?
A) Microsoft
B) Google
C) Oracle
D) Mozilla
Answer: B`

	res := Extract(raw, ShapeTestList)
	require.True(t, res.OK())
	assert.Equal(t, StrategyPattern, res.Strategy)
	require.Len(t, res.Questions, 2)

	assert.Equal(t, "What does CPU stand for?", res.Questions[0].Question)
	assert.Len(t, res.Questions[0].Options, 4)
	assert.Equal(t, "Central Processing Unit", res.Questions[0].Correct())

	assert.Equal(t, "Which company created Go?", res.Questions[1].Question)
	assert.Equal(t, "Google", res.Questions[1].Correct())
}

func TestExtract_TestListLineScannerDropsRecordsWithoutAnswer(t *testing.T) {
	raw := "Question: Unanswered?\nA) one\nB) two\nQuestion: Answered?\nA) yes\nB) no\nCorrect: B"

	res := Extract(raw, ShapeTestList)
	require.True(t, res.OK())
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "Answered?", res.Questions[0].Question)
	assert.Equal(t, "no", res.Questions[0].Correct())
}

func TestExtract_TotalFailure(t *testing.T) {
	for _, shape := range []Shape{ShapeTestList, ShapeTestObject, ShapeFlashcardList, ShapeQAPair, ShapeOptionList} {
		t.Run(shape.String(), func(t *testing.T) {
			res := Extract("   ", shape)
			assert.False(t, res.OK())
			assert.Equal(t, StrategyNone, res.Strategy)
		})
	}

	res := Extract("The model refused to answer.", ShapeTestList)
	assert.False(t, res.OK())

	res = Extract(`[{"broken": `, ShapeFlashcardList)
	assert.False(t, res.OK())
}

func TestExtract_Flashcards(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		raw := `Sure! [{"front":"Term","back":"Definition"},{"front":"Empty","back":""},{"question":"Q?","answer":"A"}]`
		res := Extract(raw, ShapeFlashcardList)
		require.True(t, res.OK())
		assert.Equal(t, StrategyJSON, res.Strategy)
		assert.Equal(t, []domain.Flashcard{
			{Front: "Term", Back: "Definition"},
			{Front: "Q?", Back: "A"},
		}, res.Cards)
	})

	t.Run("line scanner", func(t *testing.T) {
		raw := "Front: Photosynthesis\nBack: Turning light into chemical energy\n\nFront: Orphan card\nQuestion: Mitochondria\nAnswer: The powerhouse of the cell"
		res := Extract(raw, ShapeFlashcardList)
		require.True(t, res.OK())
		assert.Equal(t, StrategyPattern, res.Strategy)
		assert.Equal(t, []domain.Flashcard{
			{Front: "Photosynthesis", Back: "Turning light into chemical energy"},
			{Front: "Mitochondria", Back: "The powerhouse of the cell"},
		}, res.Cards)
		for _, c := range res.Cards {
			assert.True(t, c.Valid())
		}
	})
}

func TestExtract_QAPair(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy Strategy
		want     QAPair
	}{
		{
			name:     "json object",
			raw:      `{"question": "What is an API?", "answer": "An interface"}`,
			strategy: StrategyJSON,
			want:     QAPair{Question: "What is an API?", Answer: "An interface"},
		},
		{
			name:     "labels",
			raw:      "Question: What is REST?\nAnswer: An architectural style\nExtra line",
			strategy: StrategyLabels,
			want:     QAPair{Question: "What is REST?", Answer: "An architectural style"},
		},
		{
			name:     "first question mark",
			raw:      "what is the capital of France? Paris",
			strategy: StrategyPattern,
			want:     QAPair{Question: "what is the capital of France?", Answer: "Paris"},
		},
		{
			name:     "split keeps first question mark",
			raw:      "Why? Because it works? Mostly",
			strategy: StrategyPattern,
			want:     QAPair{Question: "Why?", Answer: "Because it works? Mostly"},
		},
		{
			name:     "short answer sentinel",
			raw:      "Is the sky blue? y",
			strategy: StrategyPattern,
			want:     QAPair{Question: "Is the sky blue?", Answer: NotEnoughInformation},
		},
		{
			name:     "no question mark splits words in half",
			raw:      "the quick brown fox",
			strategy: StrategyPattern,
			want:     QAPair{Question: "the quick", Answer: "brown fox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.raw, ShapeQAPair)
			require.True(t, res.OK())
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.want, res.Pair)
		})
	}
}

func TestSplitQuestionAnswer_Empty(t *testing.T) {
	_, ok := SplitQuestionAnswer("  ")
	assert.False(t, ok)

	_, ok = SplitQuestionAnswer("?")
	assert.False(t, ok)
}

func TestExtract_Options(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		res := Extract(`Options: ["Berlin", " Rome ", ""]`, ShapeOptionList)
		require.True(t, res.OK())
		assert.Equal(t, []string{"Berlin", "Rome"}, res.Options)
	})

	t.Run("numbered lines", func(t *testing.T) {
		raw := "Option 1: Berlin\nOption 2: Rome\n3. Madrid\n- Lisbon\nb) Vienna"
		res := Extract(raw, ShapeOptionList)
		require.True(t, res.OK())
		assert.Equal(t, StrategyPattern, res.Strategy)
		assert.Equal(t, []string{"Berlin", "Rome", "Madrid", "Lisbon", "Vienna"}, res.Options)
	})
}

func TestClean(t *testing.T) {
	raw := "<think>\nmulti\nline\n</think>```json\n{}\n```"
	assert.Equal(t, "{}", strings.TrimSpace(Clean(raw)))
}
