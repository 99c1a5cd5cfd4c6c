package extract

import (
	"encoding/json"
	"strings"

	"study-byte/internal/domain"
)

type jsonCard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (j jsonCard) card() domain.Flashcard {
	front, back := j.Front, j.Back
	if front == "" {
		front = j.Question
	}
	if back == "" {
		back = j.Answer
	}
	return domain.Flashcard{Front: strings.TrimSpace(front), Back: strings.TrimSpace(back)}
}

func extractFlashcards(text string) Result {
	if arr, ok := boundary(text, '[', ']'); ok {
		var items []jsonCard
		if err := json.Unmarshal([]byte(arr), &items); err == nil {
			var cards []domain.Flashcard
			for _, item := range items {
				if c := item.card(); c.Valid() {
					cards = append(cards, c)
				}
			}
			if len(cards) > 0 {
				return Result{Shape: ShapeFlashcardList, Strategy: StrategyJSON, Cards: cards}
			}
		}
	}

	if cards := scanFlashcards(text); len(cards) > 0 {
		return Result{Shape: ShapeFlashcardList, Strategy: StrategyPattern, Cards: cards}
	}
	return none(ShapeFlashcardList)
}

// scanFlashcards reads "Front:"/"Question:" and "Back:"/"Answer:" lines.
// A card with no back side is dropped when the next front starts.
func scanFlashcards(text string) []domain.Flashcard {
	var (
		cards   []domain.Flashcard
		current *domain.Flashcard
	)
	finalize := func() {
		if current != nil && current.Valid() {
			cards = append(cards, *current)
		}
		current = nil
	}

	for _, line := range lines(text) {
		switch {
		case hasPrefixFold(line, "front:") || hasPrefixFold(line, "question:"):
			finalize()
			current = &domain.Flashcard{Front: afterLabel(line)}
		case current == nil:
			continue
		case hasPrefixFold(line, "back:") || hasPrefixFold(line, "answer:"):
			current.Back = afterLabel(line)
		}
	}
	finalize()
	return cards
}
