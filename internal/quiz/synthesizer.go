package quiz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"study-byte/internal/domain"
	"study-byte/internal/extract"

	"go.uber.org/zap"
)

// GenericDistractors pads option sets when synthesis under-produces.
var GenericDistractors = []string{
	"Not mentioned in the text",
	"The opposite statement",
	"A different definition of the concept",
	"None of the above options",
}

// disallowedChars matches anything outside letters, digits, whitespace and
// basic punctuation. Garbled model output usually trips it.
var disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:\-?!"']`)

// PromptStyle picks the prompt format a distractor backend understands.
type PromptStyle int

const (
	// StyleTextToText is the "question/context/correct" input of a local
	// seq2seq model.
	StyleTextToText PromptStyle = iota
	// StyleChat asks a chat model for an "Option N:" list.
	StyleChat
)

// DistractorSource is one backend that proposes wrong options.
type DistractorSource struct {
	Backend domain.CompletionBackend
	Style   PromptStyle
}

// Synthesizer proposes distractors through its sources, in order, and
// validates them.
type Synthesizer struct {
	sources []DistractorSource
	logger  *zap.Logger
}

// NewSynthesizer creates a Synthesizer. Sources with a nil backend are
// ignored; with no sources every distractor comes from the generic pool.
func NewSynthesizer(logger *zap.Logger, sources ...DistractorSource) *Synthesizer {
	valid := make([]DistractorSource, 0, len(sources))
	for _, src := range sources {
		if src.Backend != nil {
			valid = append(valid, src)
		}
	}
	return &Synthesizer{sources: valid, logger: logger}
}

// SynthesizeDistractors returns exactly count unique strings, none equal
// to correctAnswer. Backend failures are logged and padded over.
func (s *Synthesizer) SynthesizeDistractors(ctx context.Context, question, correctAnswer, passage string, count int) []string {
	var candidates []string
	for _, src := range s.sources {
		if len(SelectValid(correctAnswer, candidates, count)) >= count {
			break
		}
		proposed, err := s.propose(ctx, src, question, correctAnswer, passage, count)
		if err != nil {
			s.logger.Warn("Distractor backend failed",
				zap.String("backend", string(src.Backend.ID())),
				zap.Error(err),
			)
			continue
		}
		candidates = append(candidates, proposed...)
	}
	return SelectDistractors(correctAnswer, candidates, count)
}

func (s *Synthesizer) propose(ctx context.Context, src DistractorSource, question, correctAnswer, passage string, count int) ([]string, error) {
	prompt, opts := distractorPrompt(src.Style, question, correctAnswer, passage, count)
	raw, err := src.Backend.Complete(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	res := extract.Extract(raw, extract.ShapeOptionList)
	if !res.OK() {
		return nil, fmt.Errorf("%w: no options in distractor output", domain.ErrMalformedResponse)
	}
	s.logger.Debug("Distractor candidates proposed",
		zap.String("backend", string(src.Backend.ID())),
		zap.Int("count", len(res.Options)),
	)
	return res.Options, nil
}

func distractorPrompt(style PromptStyle, question, correctAnswer, passage string, count int) (domain.Prompt, domain.CompletionOptions) {
	if style == StyleChat {
		var b strings.Builder
		fmt.Fprintf(&b, "Based on the question %q with correct answer %q from this context:\n%q\n\n", question, correctAnswer, passage)
		fmt.Fprintf(&b, "Generate %d plausible but incorrect answer options that are distinct from each other and from the correct answer.\nFormat:", count)
		for i := 1; i <= count; i++ {
			fmt.Fprintf(&b, "\nOption %d: [incorrect option %d]", i, i)
		}
		return domain.Prompt{User: b.String()}, domain.CompletionOptions{Temperature: 0.8, MaxTokens: 300}
	}

	input := fmt.Sprintf("question: %s\ncontext: %s\ncorrect: %s\ngenerate wrong options:", question, passage, correctAnswer)
	return domain.Prompt{User: input}, domain.CompletionOptions{
		Temperature: 0.8,
		MaxTokens:   64,
		NumBeams:    count + 1,
	}
}

// SelectValid runs the rejection rules over candidates in order and keeps
// at most count survivors:
//  1. equal to the correct answer, ignoring case
//  2. two characters or fewer
//  3. contains characters outside the permitted set
//  4. already accepted
func SelectValid(correctAnswer string, candidates []string, count int) []string {
	correctKey := normalize(correctAnswer)
	seen := map[string]struct{}{}
	accepted := make([]string, 0, count)

	for _, c := range candidates {
		if len(accepted) >= count {
			break
		}
		c = strings.TrimSpace(c)
		key := normalize(c)
		if key == correctKey {
			continue
		}
		if utf8.RuneCountInString(c) <= 2 {
			continue
		}
		if disallowedChars.MatchString(c) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, c)
	}
	return accepted
}

// SelectDistractors validates candidates and pads from GenericDistractors,
// skipping entries that collide with the correct answer or an accepted
// distractor. The result always has exactly count entries.
func SelectDistractors(correctAnswer string, candidates []string, count int) []string {
	if count <= 0 {
		return []string{}
	}
	accepted := SelectValid(correctAnswer, candidates, count)

	taken := map[string]struct{}{normalize(correctAnswer): {}}
	for _, a := range accepted {
		taken[normalize(a)] = struct{}{}
	}
	pad := func(option string) {
		if len(accepted) >= count {
			return
		}
		if _, collide := taken[normalize(option)]; collide {
			return
		}
		taken[normalize(option)] = struct{}{}
		accepted = append(accepted, option)
	}

	for _, generic := range GenericDistractors {
		pad(generic)
	}
	// Only reachable when count exceeds the pool.
	for round := 2; len(accepted) < count; round++ {
		for _, generic := range GenericDistractors {
			pad(fmt.Sprintf("%s (%d)", generic, round))
		}
	}
	return accepted
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
