package service

import (
	"fmt"

	"study-byte/internal/domain"
)

const (
	testSystemPrompt      = "You are an educational assistant that creates multiple-choice questions."
	flashcardSystemPrompt = "You are an educational assistant that creates high-quality flashcards."
	summarySystemPrompt   = "You are an expert summarizer that creates concise summaries."
)

// remoteMaxTokens bounds list responses from the chat model.
const remoteMaxTokens = 2000

func testPrompt(text string, count int) domain.Prompt {
	return domain.Prompt{
		System: testSystemPrompt,
		User: fmt.Sprintf(`Based on the following text, create %d multiple choice questions.

For each question:
1. Create one correct answer
2. Create three incorrect but plausible answers
3. Format each question as JSON with fields: question, options (array of 4 options), correct_index (0-3)

TEXT:
%s

Return a JSON array with %d questions.`, count, text, count),
	}
}

func flashcardPrompt(text string, count int) domain.Prompt {
	return domain.Prompt{
		System: flashcardSystemPrompt,
		User: fmt.Sprintf(`Based on the following text, create %d flashcards.

For each flashcard:
1. Create a front side with a question or key term
2. Create a back side with the answer or definition
3. Format each flashcard as JSON with fields: front, back

TEXT:
%s

Return a JSON array with %d flashcards.`, count, text, count),
	}
}

func summaryPrompt(text string, maxWords int) domain.Prompt {
	return domain.Prompt{
		System: summarySystemPrompt,
		User: fmt.Sprintf(`Summarize the following text in a concise way.

The summary should:
1. Be approximately %d words or less
2. Include the key points from the original text
3. Be well-structured with paragraphs

TEXT:
%s`, maxWords, text),
	}
}

// qaPrompt is the input format of the local question-answer model.
func qaPrompt(sentence string) domain.Prompt {
	return domain.Prompt{User: "context: " + sentence}
}
