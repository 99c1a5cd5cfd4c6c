package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// NotEnoughInformation replaces answers that are missing or shorter than two characters.
const NotEnoughInformation = "Not enough information"

var qaLabels = regexp.MustCompile(`(?is)question\s*:\s*(.+?)\s*answer\s*:\s*(.+)`)

func extractQAPair(text string) Result {
	if obj, ok := boundary(text, '{', '}'); ok {
		var pair QAPair
		if err := json.Unmarshal([]byte(obj), &pair); err == nil {
			pair.Question = strings.TrimSpace(pair.Question)
			pair.Answer = strings.TrimSpace(pair.Answer)
			if pair.Question != "" && pair.Answer != "" {
				return Result{Shape: ShapeQAPair, Strategy: StrategyJSON, Pair: pair}
			}
		}
	}

	if m := qaLabels.FindStringSubmatch(text); m != nil {
		q := strings.TrimSpace(m[1])
		a := firstLine(m[2])
		if q != "" && len(a) >= 2 {
			return Result{Shape: ShapeQAPair, Strategy: StrategyLabels, Pair: QAPair{Question: q, Answer: a}}
		}
	}

	pair, ok := SplitQuestionAnswer(text)
	if !ok {
		return none(ShapeQAPair)
	}
	return Result{Shape: ShapeQAPair, Strategy: StrategyPattern, Pair: pair}
}

// SplitQuestionAnswer splits on the first literal "?". Text before it,
// with the "?" re-appended, is the question; the rest is the answer. An
// internal "?" inside a longer question therefore moves the split point,
// and callers rely on that exact position. Without any "?", the words are
// split in half.
func SplitQuestionAnswer(text string) (QAPair, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return QAPair{}, false
	}

	var question, answer string
	if i := strings.Index(text, "?"); i >= 0 {
		question = strings.TrimSpace(text[:i]) + "?"
		answer = strings.TrimSpace(text[i+1:])
	} else {
		words := strings.Fields(text)
		mid := len(words) / 2
		question = strings.Join(words[:mid], " ")
		answer = strings.Join(words[mid:], " ")
	}

	if answer == "" || len(answer) < 2 {
		answer = NotEnoughInformation
	}
	if strings.TrimSpace(strings.TrimSuffix(question, "?")) == "" {
		return QAPair{}, false
	}
	return QAPair{Question: question, Answer: answer}, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
