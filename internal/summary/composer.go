// Package summary produces flat and sectioned summaries through a local
// summarization backend and renders them as Markdown or HTML.
package summary

import (
	"context"
	"fmt"
	"strings"

	"study-byte/internal/domain"

	"go.uber.org/zap"
)

// Params are the length-dependent generation settings of the summarizer.
type Params struct {
	MaxLength     int
	MinLength     int
	NumBeams      int
	LengthPenalty float64
}

// OverviewParams apply to the whole-text call that seeds the overview.
var OverviewParams = Params{MaxLength: 150, MinLength: 50, NumBeams: 4}

// OverviewPoints is how many sentences of the overview call are kept.
const OverviewPoints = 3

// ParamsFor picks settings by input word count.
func ParamsFor(wordCount int) Params {
	switch {
	case wordCount < 100:
		return Params{MaxLength: 100, MinLength: 30, NumBeams: 4, LengthPenalty: 1.5}
	case wordCount < 300:
		return Params{MaxLength: 150, MinLength: 50, NumBeams: 4, LengthPenalty: 2.0}
	default:
		return Params{MaxLength: 250, MinLength: 100, NumBeams: 5, LengthPenalty: 2.0}
	}
}

// options leaves Temperature at zero: beam search, no sampling.
func (p Params) options() domain.CompletionOptions {
	return domain.CompletionOptions{
		MaxTokens:     p.MaxLength,
		MinLength:     p.MinLength,
		NumBeams:      p.NumBeams,
		LengthPenalty: p.LengthPenalty,
	}
}

// Composer drives a text-to-text summarization backend. Calls are made
// one after another; the backend is usually a single local model.
type Composer struct {
	backend domain.CompletionBackend
	logger  *zap.Logger
}

func NewComposer(backend domain.CompletionBackend, logger *zap.Logger) *Composer {
	return &Composer{backend: backend, logger: logger}
}

func (c *Composer) summarize(ctx context.Context, text string, p Params) (string, error) {
	out, err := c.backend.Complete(ctx, domain.Prompt{User: "summarize: " + text}, p.options())
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrMalformedResponse)
	}
	return out, nil
}

// Flat summarizes the whole text in one call.
func (c *Composer) Flat(ctx context.Context, text string) (string, error) {
	return c.summarize(ctx, text, ParamsFor(len(strings.Fields(text))))
}

// Sectioned summarizes every section separately, plus a whole-text call
// whose first OverviewPoints sentences form the overview. Any failed call
// fails the whole composition.
func (c *Composer) Sectioned(ctx context.Context, text string) (*domain.SectionedSummary, error) {
	out := &domain.SectionedSummary{Sections: map[string][]string{}}

	for _, sec := range SplitSections(text) {
		s, err := c.summarize(ctx, sec.Content, ParamsFor(len(strings.Fields(sec.Content))))
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.Heading, err)
		}
		out.SectionOrder = append(out.SectionOrder, sec.Heading)
		out.Sections[sec.Heading] = Points(s)
		c.logger.Debug("Section summarized", zap.String("section", sec.Heading))
	}

	overview, err := c.summarize(ctx, text, OverviewParams)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	out.Overview = Points(overview)
	if len(out.Overview) > OverviewPoints {
		out.Overview = out.Overview[:OverviewPoints]
	}
	return out, nil
}
