// Package quiz turns a correct answer plus candidate distractors into a
// validated multiple-choice question.
package quiz

import (
	"fmt"
	"math/rand"
	"strings"

	"study-byte/internal/domain"
)

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Assembler shuffles options and tracks where the correct answer lands.
type Assembler struct {
	shuffle ShuffleFunc
}

// NewAssembler returns an Assembler backed by the top-level math/rand
// source, which is safe for concurrent use.
func NewAssembler() *Assembler {
	return &Assembler{shuffle: rand.Shuffle}
}

// NewAssemblerWithShuffle is used by tests that need a fixed order.
func NewAssemblerWithShuffle(shuffle ShuffleFunc) *Assembler {
	return &Assembler{shuffle: shuffle}
}

// Assemble returns [correct]+distractors shuffled, and the index of
// correct in that list. correctAnswer must not also appear among the
// distractors; SelectDistractors guarantees that.
func (a *Assembler) Assemble(correctAnswer string, distractors []string) ([]string, int) {
	options := make([]string, 0, len(distractors)+1)
	options = append(options, correctAnswer)
	options = append(options, distractors...)

	a.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	for i, opt := range options {
		if opt == correctAnswer {
			return options, i
		}
	}
	return options, -1
}

// BuildQuestion validates candidates into OptionCount-1 distractors, assembles
// them with the correct answer and checks the resulting question.
func (a *Assembler) BuildQuestion(question, correctAnswer string, candidates []string) (domain.TestQuestion, error) {
	question = strings.TrimSpace(question)
	correctAnswer = strings.TrimSpace(correctAnswer)
	if correctAnswer == "" {
		return domain.TestQuestion{}, fmt.Errorf("%w: missing correct answer", domain.ErrMalformedResponse)
	}

	distractors := SelectDistractors(correctAnswer, candidates, domain.OptionCount-1)
	options, idx := a.Assemble(correctAnswer, distractors)

	q := domain.TestQuestion{
		Question:     question,
		Options:      options,
		CorrectIndex: idx,
	}
	if err := q.Validate(); err != nil {
		return domain.TestQuestion{}, err
	}
	return q, nil
}
