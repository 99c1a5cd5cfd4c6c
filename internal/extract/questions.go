package extract

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

type jsonQuestion struct {
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectIndex  json.RawMessage `json:"correct_index"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Answer        string          `json:"answer"`
}

func (j jsonQuestion) candidate() (Candidate, bool) {
	c := Candidate{
		Question:     strings.TrimSpace(j.Question),
		CorrectIndex: -1,
	}
	for _, opt := range j.Options {
		c.Options = append(c.Options, strings.TrimSpace(opt))
	}
	if idx, ok := decodeIndex(j.CorrectIndex, len(c.Options)); ok {
		c.CorrectIndex = idx
	} else {
		c.resolveAnswer(decodeAnswer(j.CorrectAnswer, j.Answer))
	}
	return c, c.usable()
}

// decodeIndex accepts correct_index as a number, a numeric string or an
// option letter.
func decodeIndex(raw json.RawMessage, n int) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		idx := int(f)
		return idx, float64(idx) == f && idx >= 0 && idx < n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, idx >= 0 && idx < n
	}
	if idx, ok := letterIndex(s); ok {
		return idx, idx < n
	}
	return 0, false
}

// decodeAnswer accepts correct_answer as a string or a number.
func decodeAnswer(raw json.RawMessage, fallback string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return strings.TrimSpace(fallback)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Itoa(n)
	}
	return strings.TrimSpace(fallback)
}

// resolveAnswer maps an answer given as text, letter or number to an index.
func (c *Candidate) resolveAnswer(answer string) {
	if answer == "" {
		return
	}
	for i, opt := range c.Options {
		if strings.EqualFold(opt, answer) {
			c.CorrectIndex = i
			return
		}
	}
	if idx, ok := letterIndex(answer); ok && idx < len(c.Options) {
		c.CorrectIndex = idx
		return
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 0 && n < len(c.Options) {
		c.CorrectIndex = n
		return
	}
	c.CorrectAnswer = answer
}

func (c Candidate) usable() bool {
	return c.Question != "" && strings.TrimSpace(c.Correct()) != ""
}

func extractTests(text string, list bool) Result {
	shape := ShapeTestObject
	if list {
		shape = ShapeTestList
		if arr, ok := boundary(text, '[', ']'); ok {
			var items []json.RawMessage
			if err := json.Unmarshal([]byte(arr), &items); err == nil {
				if out := usableCandidates(items); len(out) > 0 {
					return Result{Shape: shape, Strategy: StrategyJSON, Questions: out}
				}
			}
		}
	}

	if obj, ok := boundary(text, '{', '}'); ok {
		var item jsonQuestion
		if err := json.Unmarshal([]byte(obj), &item); err == nil {
			if c, ok := item.candidate(); ok {
				return Result{Shape: shape, Strategy: StrategyJSON, Questions: []Candidate{c}}
			}
		}
	}

	if out := scanTests(text); len(out) > 0 {
		if !list {
			out = out[:1]
		}
		return Result{Shape: shape, Strategy: StrategyPattern, Questions: out}
	}
	return none(shape)
}

// usableCandidates decodes each item on its own so one malformed entry
// does not discard the rest of the list.
func usableCandidates(items []json.RawMessage) []Candidate {
	var out []Candidate
	for _, raw := range items {
		var item jsonQuestion
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if c, ok := item.candidate(); ok {
			out = append(out, c)
		}
	}
	return out
}

var (
	questionLine = regexp.MustCompile(`(?i)^question\s*\d*\s*[:.)\-]?\s*`)
	optionLine   = regexp.MustCompile(`^\(?([A-Da-d])[.)]\s*(.+)$`)
	upperLetter  = regexp.MustCompile(`\b([A-D])\b`)
	lowerMarker  = regexp.MustCompile(`(?:^|\s)\(?([a-d])[.)]`)
)

// scanTests reads "Question ...", "A." / "A)" ... "D)", and
// "Correct ..." / "Answer ..." lines. A new Question line finalizes the
// record in progress.
func scanTests(text string) []Candidate {
	var (
		out     []Candidate
		current *Candidate
	)
	finalize := func() {
		if current != nil && current.usable() {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range lines(text) {
		switch {
		case hasPrefixFold(line, "question"):
			finalize()
			q := strings.TrimSpace(questionLine.ReplaceAllString(line, ""))
			current = &Candidate{Question: q, CorrectIndex: -1}
		case current == nil:
			continue
		case optionLine.MatchString(line):
			m := optionLine.FindStringSubmatch(line)
			current.Options = append(current.Options, strings.TrimSpace(m[2]))
		case hasPrefixFold(line, "correct") || hasPrefixFold(line, "answer"):
			if idx, ok := answerIndex(line, current.Options); ok {
				current.CorrectIndex = idx
			}
		}
	}
	finalize()
	return out
}

// answerIndex finds the correct option on a "Correct answer: B" style
// line. The option text itself wins, then an upper-case letter, then a
// lower-case letter written alone or as a marker ("b)", "(b)"). A bare
// lower-case "a" in prose is never read as option A.
func answerIndex(line string, options []string) (int, bool) {
	rest := afterLabel(line)
	if rest == "" {
		rest = strings.TrimSpace(line[strings.IndexAny(line, " \t")+1:])
	}
	text := strings.TrimRight(rest, ".")
	for i, opt := range options {
		if strings.EqualFold(opt, text) {
			return i, true
		}
	}

	found := func(idx int, ok bool) (int, bool) {
		return idx, ok && idx < len(options)
	}
	if m := upperLetter.FindStringSubmatch(rest); m != nil {
		return found(letterIndex(m[1]))
	}
	if idx, ok := letterIndex(rest); ok {
		return found(idx, ok)
	}
	if m := lowerMarker.FindStringSubmatch(rest); m != nil {
		return found(letterIndex(m[1]))
	}
	return 0, false
}

func letterIndex(s string) (int, bool) {
	s = strings.Trim(strings.TrimSpace(s), "().")
	if len(s) != 1 {
		return 0, false
	}
	switch c := s[0]; {
	case c >= 'A' && c <= 'D':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'd':
		return int(c - 'a'), true
	}
	return 0, false
}
