package heuristic

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

type tokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

// Splitter breaks text into sentences with a Punkt tokenizer trained for
// English. Each line is tokenized on its own so heading lines without a
// full stop do not swallow the text that follows them.
type Splitter struct {
	tokenizer tokenizer
}

// NewSplitter loads the English Punkt model. Build it once and share it;
// Tokenize only reads the model.
func NewSplitter() (*Splitter, error) {
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	return &Splitter{tokenizer: t}, nil
}

// Sentences returns the trimmed, non-empty sentences of text.
func (s *Splitter) Sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sent := range s.tokenizer.Tokenize(line) {
			if t := strings.TrimSpace(sent.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
