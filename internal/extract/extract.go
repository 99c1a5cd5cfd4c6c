// Package extract recovers structured data from free-form model output.
//
// Every shape is tried the same way: clean the text, decode the outermost
// JSON boundary strictly, and fall back to a line scanner for that shape.
// Nothing here returns an error; a Result with Strategy None is the
// failure value.
package extract

import (
	"regexp"
	"strings"

	"study-byte/internal/domain"
)

// Shape is the structure the caller expects the raw text to contain.
type Shape int

const (
	ShapeQAPair Shape = iota
	ShapeTestList
	ShapeTestObject
	ShapeFlashcardList
	ShapeOptionList
)

func (s Shape) String() string {
	switch s {
	case ShapeQAPair:
		return "qa_pair"
	case ShapeTestList:
		return "test_list"
	case ShapeTestObject:
		return "test_object"
	case ShapeFlashcardList:
		return "flashcard_list"
	case ShapeOptionList:
		return "option_list"
	default:
		return "unknown"
	}
}

// Strategy records which pass produced a Result.
type Strategy string

const (
	StrategyNone    Strategy = "none"
	StrategyJSON    Strategy = "json"
	StrategyLabels  Strategy = "labels"
	StrategyPattern Strategy = "pattern"
)

// QAPair is a question with its answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Candidate is a test question as the model proposed it. Options are not
// yet validated; CorrectIndex is -1 when only CorrectAnswer is known.
type Candidate struct {
	Question      string
	Options       []string
	CorrectIndex  int
	CorrectAnswer string
}

// Correct returns the designated correct answer text.
func (c Candidate) Correct() string {
	if c.CorrectIndex >= 0 && c.CorrectIndex < len(c.Options) {
		return c.Options[c.CorrectIndex]
	}
	return c.CorrectAnswer
}

// Distractors returns every option other than the correct one.
func (c Candidate) Distractors() []string {
	out := make([]string, 0, len(c.Options))
	for i, opt := range c.Options {
		if i == c.CorrectIndex {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// Result is a tagged union keyed by Shape. Only the field matching the
// shape is populated.
type Result struct {
	Shape     Shape
	Strategy  Strategy
	Pair      QAPair
	Questions []Candidate
	Cards     []domain.Flashcard
	Options   []string
}

// OK reports whether any strategy produced data.
func (r Result) OK() bool {
	return r.Strategy != StrategyNone
}

func none(shape Shape) Result {
	return Result{Shape: shape, Strategy: StrategyNone}
}

// Extract recovers the requested shape from raw model output.
func Extract(raw string, shape Shape) Result {
	text := Clean(raw)
	if text == "" {
		return none(shape)
	}

	switch shape {
	case ShapeQAPair:
		return extractQAPair(text)
	case ShapeTestList:
		return extractTests(text, true)
	case ShapeTestObject:
		return extractTests(text, false)
	case ShapeFlashcardList:
		return extractFlashcards(text)
	case ShapeOptionList:
		return extractOptions(text)
	default:
		return none(shape)
	}
}

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFence  = regexp.MustCompile("```[a-zA-Z]*")
)

// Clean strips reasoning blocks and markdown code fences.
func Clean(raw string) string {
	text := thinkBlock.ReplaceAllString(raw, "")
	text = codeFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// boundary returns the substring from the first open to the last close
// delimiter. It does not check nesting.
func boundary(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = normalizeLine(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// normalizeLine drops markdown emphasis and bullet markers models like to add.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•#> ")
	return strings.TrimSpace(line)
}

// afterLabel returns the text after the first colon, or "" if there is none.
func afterLabel(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
