// Package heuristic generates artifacts from the source text alone, with
// no model involved. It is the last tier before a placeholder.
package heuristic

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"study-byte/internal/domain"
	"study-byte/internal/quiz"

	"github.com/samber/lo"
)

// EmptySummary is returned by Summarize for blank input.
const EmptySummary = "No text provided for summarization."

// Generator builds summaries, flashcards and questions by picking
// sentences out of the text.
type Generator struct {
	splitter  *Splitter
	assembler *quiz.Assembler
	intn      func(n int) int
}

func NewGenerator(splitter *Splitter, assembler *quiz.Assembler) *Generator {
	return &Generator{splitter: splitter, assembler: assembler, intn: rand.Intn}
}

// Sentences exposes the splitter so other tiers pick from the same units.
func (g *Generator) Sentences(text string) []string {
	return g.splitter.Sentences(text)
}

// QuestionCount scales the number of questions with the text length:
// one per wordsPerQuestion words, at least one and at most maxQuestions.
func QuestionCount(text string, maxQuestions, wordsPerQuestion int) int {
	if wordsPerQuestion <= 0 {
		wordsPerQuestion = 100
	}
	n := len(strings.Fields(text)) / wordsPerQuestion
	if n < 1 {
		n = 1
	}
	if maxQuestions > 0 && n > maxQuestions {
		n = maxQuestions
	}
	return n
}

// Summarize keeps the first sentence, every third sentence from the
// fourth up to the ninth, and the last sentence.
func (g *Generator) Summarize(text string) string {
	sents := lo.Filter(g.Sentences(text), func(s string, _ int) bool {
		return !strings.HasSuffix(s, ":")
	})
	if len(sents) == 0 {
		return EmptySummary
	}

	picked := []int{0}
	for i := 3; i < len(sents) && i < 9; i += 3 {
		picked = append(picked, i)
	}
	if last := len(sents) - 1; last > 0 && !lo.Contains(picked, last) {
		picked = append(picked, last)
	}

	parts := lo.Map(picked, func(i int, _ int) string {
		return terminate(sents[i])
	})
	return strings.Join(parts, " ")
}

type definition struct {
	term    string
	meaning string
}

// definitions finds "term: meaning" sentences.
func (g *Generator) definitions(sents []string) []definition {
	var out []definition
	for _, s := range sents {
		term, meaning, ok := strings.Cut(s, ":")
		if !ok {
			continue
		}
		term = strings.TrimFunc(term, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ')'
		})
		meaning = strings.TrimSpace(meaning)
		if term == "" || meaning == "" || len(strings.Fields(term)) > 8 {
			continue
		}
		out = append(out, definition{term: term, meaning: meaning})
	}
	return out
}

// Flashcards turns "term: meaning" sentences into "What is term?" cards,
// then falls back to "Explain: first three words..." cards for sentences
// longer than 20 characters.
func (g *Generator) Flashcards(text string, count int) []domain.Flashcard {
	sents := g.Sentences(text)
	cards := make([]domain.Flashcard, 0, count)
	used := map[string]bool{}

	for _, d := range g.definitions(sents) {
		if len(cards) >= count {
			return cards
		}
		front := fmt.Sprintf("What is %s?", d.term)
		if used[strings.ToLower(front)] {
			continue
		}
		used[strings.ToLower(front)] = true
		cards = append(cards, domain.Flashcard{Front: front, Back: d.meaning})
	}

	long := lo.Filter(sents, func(s string, _ int) bool {
		return len(s) > 20 && len(strings.Fields(s)) > 5 && !strings.Contains(s, ":")
	})
	for _, s := range long {
		if len(cards) >= count {
			break
		}
		words := strings.Fields(s)
		cards = append(cards, domain.Flashcard{
			Front: fmt.Sprintf("Explain: %s...", strings.Join(words[:3], " ")),
			Back:  s,
		})
	}
	return cards
}

type qaPair struct {
	question string
	answer   string
	related  []string
}

// TestQuestions builds questions from definitions first, then from the
// tail of long sentences. Distractors are other answers from the same
// text plus random three or four word spans.
func (g *Generator) TestQuestions(text string, count int) []domain.TestQuestion {
	sents := g.Sentences(text)
	defs := g.definitions(sents)

	var pairs []qaPair
	meanings := lo.Map(defs, func(d definition, _ int) string { return d.meaning })
	for i, d := range defs {
		pairs = append(pairs, qaPair{
			question: fmt.Sprintf("What is %s?", d.term),
			answer:   d.meaning,
			related:  others(meanings, i),
		})
	}

	long := lo.Filter(sents, func(s string, _ int) bool {
		return len(strings.Fields(s)) > 6 && !strings.Contains(s, ":")
	})
	tails := lo.Map(long, func(s string, _ int) string {
		return strings.Join(strings.Fields(s)[3:], " ")
	})
	for i, s := range long {
		words := strings.Fields(s)
		pairs = append(pairs, qaPair{
			question: fmt.Sprintf("Which statement about \"%s\" is correct?", strings.Join(words[:3], " ")),
			answer:   tails[i],
			related:  others(tails, i),
		})
	}

	words := strings.Fields(text)
	questions := make([]domain.TestQuestion, 0, count)
	seen := map[string]bool{}
	for _, p := range pairs {
		if len(questions) >= count {
			break
		}
		if seen[strings.ToLower(p.question)] {
			continue
		}
		candidates := append(g.shuffled(p.related), g.spans(words, p.answer, 3)...)
		q, err := g.assembler.BuildQuestion(p.question, p.answer, candidates)
		if err != nil {
			continue
		}
		seen[strings.ToLower(p.question)] = true
		questions = append(questions, q)
	}
	return questions
}

// spans picks up to n random runs of three or four words that differ from answer.
func (g *Generator) spans(words []string, answer string, n int) []string {
	var out []string
	if len(words) <= 4 {
		return out
	}
	for i := 0; i < n; i++ {
		start := g.intn(len(words) - 4)
		size := 3 + g.intn(2)
		span := strings.Trim(strings.Join(words[start:start+size], " "), ".,;:")
		if !strings.EqualFold(span, answer) && !lo.Contains(out, span) {
			out = append(out, span)
		}
	}
	return out
}

func (g *Generator) shuffled(values []string) []string {
	out := append([]string(nil), values...)
	for i := len(out) - 1; i > 0; i-- {
		j := g.intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func others(values []string, skip int) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if i != skip {
			out = append(out, v)
		}
	}
	return out
}

func terminate(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
