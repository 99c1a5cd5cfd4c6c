package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/extract"
	"study-byte/internal/heuristic"
	"study-byte/internal/quiz"
	"study-byte/internal/summary"
	"study-byte/internal/util"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Tier names reported on every artifact.
const (
	TierRemote       = "remote-chat"
	TierLocalQA      = "local-qa"
	TierLocalSummary = "local-summary"
	TierHeuristic    = "heuristic"
	TierPlaceholder  = "placeholder"
)

// PlaceholderSummary is returned when every summary tier failed.
const PlaceholderSummary = "Error generating summary."

// PlaceholderQuestion is returned when every test tier failed.
func PlaceholderQuestion() domain.TestQuestion {
	return domain.TestQuestion{
		Question: "What is the main topic discussed in the text?",
		Options: []string{
			"Technology in business processes",
			"History of computing machines",
			"Environmental impacts of technology",
			"Social media marketing",
		},
		CorrectIndex: 0,
	}
}

const (
	qaMaxLength = 200
	qaNumBeams  = 2
)

// BackendRegistry is the read-only view of the process backends the
// service needs.
type BackendRegistry interface {
	Lookup(id domain.BackendID) (domain.CompletionBackend, error)
	Invoke(ctx context.Context, id domain.BackendID, prompt domain.Prompt, opts domain.CompletionOptions) (domain.RawCompletion, error)
}

// tier is one ranked attempt source. backend is empty for tiers that need
// no model.
type tier struct {
	name    string
	backend domain.BackendID
	run     func(ctx context.Context) (domain.Artifact, error)
}

// generationService runs each artifact kind through its fallback chain.
// It holds no per-request state; everything a request accumulates lives
// on the stack of the call.
type generationService struct {
	registry    BackendRegistry
	synthesizer *quiz.Synthesizer
	assembler   *quiz.Assembler
	heuristic   *heuristic.Generator
	embedder    domain.EmbeddingService
	cfg         config.GenerationConfig
	logger      *zap.Logger
	intn        func(n int) int
	now         func() time.Time
}

// NewGenerationService wires the pipeline. embedder may be nil, which
// limits duplicate detection to exact text matches.
func NewGenerationService(
	registry BackendRegistry,
	gen *heuristic.Generator,
	assembler *quiz.Assembler,
	embedder domain.EmbeddingService,
	cfg config.GenerationConfig,
	logger *zap.Logger,
) domain.GenerationService {
	lookup := func(id domain.BackendID) domain.CompletionBackend {
		b, err := registry.Lookup(id)
		if err != nil {
			return nil
		}
		return b
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 5
	}

	return &generationService{
		registry: registry,
		synthesizer: quiz.NewSynthesizer(logger,
			quiz.DistractorSource{Backend: lookup(domain.BackendLocalDistractor), Style: quiz.StyleTextToText},
			quiz.DistractorSource{Backend: lookup(domain.BackendRemoteChat), Style: quiz.StyleChat},
		),
		assembler: assembler,
		heuristic: gen,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
		intn:      rand.Intn,
		now:       time.Now,
	}
}

func (s *generationService) Generate(ctx context.Context, req domain.GenerationRequest) domain.Artifact {
	switch req.Kind {
	case domain.KindTest:
		return s.GenerateTests(ctx, req.SourceText, req.ItemCount, req.Params)
	case domain.KindFlashcard:
		return s.GenerateFlashcards(ctx, req.SourceText, req.ItemCount, req.Params)
	case domain.KindSummary:
		return s.GenerateSummary(ctx, req.SourceText, req.Params)
	default:
		s.logger.Error("Unknown artifact kind", zap.String("kind", string(req.Kind)))
		return domain.Artifact{Kind: req.Kind, Tier: TierPlaceholder, Degraded: true}
	}
}

// runTiers is the fallback state machine. Each tier is Attempting until
// it yields Success or AdvanceTier; running out of tiers is Exhausted and
// produces the placeholder.
func (s *generationService) runTiers(ctx context.Context, kind domain.ArtifactKind, tiers []tier, placeholder func() domain.Artifact) domain.Artifact {
	for attempt, t := range tiers {
		log := s.logger.With(
			zap.String("kind", string(kind)),
			zap.String("tier", t.name),
			zap.String("backend", string(t.backend)),
			zap.Int("attempt", attempt+1),
		)

		if t.backend != "" {
			if _, err := s.registry.Lookup(t.backend); err != nil {
				log.Info("Skipping tier", zap.Error(err))
				continue
			}
		}

		start := s.now()
		art, err := t.run(ctx)
		latency := s.now().Sub(start)
		if err != nil {
			log.Warn("Tier failed, advancing", zap.Duration("latency", latency), zap.Error(err))
			continue
		}

		log.Info("Tier succeeded", zap.Duration("latency", latency))
		art.Kind = kind
		art.Tier = t.name
		return art
	}

	s.logger.Error("Returning placeholder",
		zap.String("kind", string(kind)),
		zap.String("tier", TierPlaceholder),
		zap.Error(domain.ErrExhaustedFallback),
	)
	art := placeholder()
	art.Kind = kind
	art.Tier = TierPlaceholder
	art.Degraded = true
	return art
}

func (s *generationService) count(n int) int {
	if n <= 0 {
		return s.cfg.DefaultCount
	}
	return n
}

func (s *generationService) normalizeParams(p domain.GenerationParams) domain.GenerationParams {
	def := domain.DefaultGenerationParams()
	if p.MaxLength <= 0 {
		p.MaxLength = def.MaxLength
	}
	if p.WordsPerQuestion <= 0 {
		p.WordsPerQuestion = def.WordsPerQuestion
		if s.cfg.WordsPerQuestion > 0 {
			p.WordsPerQuestion = s.cfg.WordsPerQuestion
		}
	}
	if p.SummaryMode == "" {
		p.SummaryMode = def.SummaryMode
	}
	return p
}

// GenerateTests tries remote-chat, local-QA, heuristic, then a single
// placeholder question. The local tiers derive questions sentence by
// sentence, so their quota is also bounded by the text length.
func (s *generationService) GenerateTests(ctx context.Context, text string, count int, params domain.GenerationParams) domain.Artifact {
	count = s.count(count)
	params = s.normalizeParams(params)
	quota := min(count, heuristic.QuestionCount(text, s.cfg.MaxQuestions, params.WordsPerQuestion))

	tiers := []tier{
		{name: TierRemote, backend: domain.BackendRemoteChat, run: func(ctx context.Context) (domain.Artifact, error) {
			qs, err := s.remoteTests(ctx, text, count, params)
			return domain.Artifact{Tests: qs}, err
		}},
		{name: TierLocalQA, backend: domain.BackendLocalQA, run: func(ctx context.Context) (domain.Artifact, error) {
			qs, err := s.localTests(ctx, text, quota, params)
			return domain.Artifact{Tests: qs}, err
		}},
		{name: TierHeuristic, run: func(ctx context.Context) (domain.Artifact, error) {
			qs := s.dedupeQuestions(ctx, s.heuristic.TestQuestions(text, quota), quota)
			if len(qs) == 0 {
				return domain.Artifact{}, fmt.Errorf("%w: no questions derivable from text", domain.ErrMalformedResponse)
			}
			return domain.Artifact{Tests: qs}, nil
		}},
	}
	return s.runTiers(ctx, domain.KindTest, tiers, func() domain.Artifact {
		return domain.Artifact{Tests: []domain.TestQuestion{PlaceholderQuestion()}}
	})
}

func (s *generationService) remoteTests(ctx context.Context, text string, count int, params domain.GenerationParams) ([]domain.TestQuestion, error) {
	raw, err := s.registry.Invoke(ctx, domain.BackendRemoteChat, testPrompt(text, count), domain.CompletionOptions{
		Temperature: params.Temperature,
		MaxTokens:   remoteMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	res := extract.Extract(raw.Text, extract.ShapeTestList)
	if !res.OK() {
		return nil, fmt.Errorf("%w: no questions in %s output", domain.ErrMalformedResponse, raw.BackendID)
	}

	var questions []domain.TestQuestion
	for _, c := range res.Questions {
		q, err := s.assembler.BuildQuestion(c.Question, c.Correct(), c.Distractors())
		if err != nil {
			s.logger.Debug("Dropping invalid remote question", zap.String("question", c.Question), zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}
	questions = s.dedupeQuestions(ctx, questions, count)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: every remote question was invalid", domain.ErrMalformedResponse)
	}
	return questions, nil
}

// localTests asks the QA model for one pair per sampled sentence and
// completes each with synthesized distractors.
func (s *generationService) localTests(ctx context.Context, text string, count int, params domain.GenerationParams) ([]domain.TestQuestion, error) {
	pairs, err := s.localPairs(ctx, text, count, params)
	if err != nil {
		return nil, err
	}

	var questions []domain.TestQuestion
	for _, p := range pairs {
		distractors := s.synthesizer.SynthesizeDistractors(ctx, p.Question, p.Answer, p.context, domain.OptionCount-1)
		q, err := s.assembler.BuildQuestion(p.Question, p.Answer, distractors)
		if err != nil {
			continue
		}
		questions = append(questions, q)
	}
	questions = s.dedupeQuestions(ctx, questions, count)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: local QA produced no usable question", domain.ErrMalformedResponse)
	}
	return questions, nil
}

type sourcedPair struct {
	extract.QAPair
	context string
}

// localPairs samples up to 2*count sentences at random and collects QA
// pairs until count distinct questions exist. A backend error ends the
// tier at once; retries already happened below this layer.
func (s *generationService) localPairs(ctx context.Context, text string, count int, params domain.GenerationParams) ([]sourcedPair, error) {
	sentences := lo.Filter(s.heuristic.Sentences(text), func(sent string, _ int) bool {
		return !strings.HasSuffix(sent, ":")
	})
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: no sentences in text", domain.ErrMalformedResponse)
	}

	var pairs []sourcedPair
	seen := map[string]bool{}
	for i := 0; i < count*2 && len(pairs) < count; i++ {
		sentence := sentences[s.intn(len(sentences))]
		raw, err := s.registry.Invoke(ctx, domain.BackendLocalQA, qaPrompt(sentence), domain.CompletionOptions{
			Temperature: params.Temperature,
			MaxTokens:   qaMaxLength,
			NumBeams:    qaNumBeams,
		})
		if err != nil {
			return nil, err
		}
		res := extract.Extract(raw.Text, extract.ShapeQAPair)
		if !res.OK() || res.Pair.Answer == extract.NotEnoughInformation {
			continue
		}
		key := strings.ToLower(res.Pair.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, sourcedPair{QAPair: res.Pair, context: sentence})
	}
	return pairs, nil
}

// GenerateFlashcards tries remote-chat, local-QA, heuristic, then an
// empty list.
func (s *generationService) GenerateFlashcards(ctx context.Context, text string, count int, params domain.GenerationParams) domain.Artifact {
	count = s.count(count)
	params = s.normalizeParams(params)

	tiers := []tier{
		{name: TierRemote, backend: domain.BackendRemoteChat, run: func(ctx context.Context) (domain.Artifact, error) {
			raw, err := s.registry.Invoke(ctx, domain.BackendRemoteChat, flashcardPrompt(text, count), domain.CompletionOptions{
				Temperature: params.Temperature,
				MaxTokens:   remoteMaxTokens,
			})
			if err != nil {
				return domain.Artifact{}, err
			}
			res := extract.Extract(raw.Text, extract.ShapeFlashcardList)
			return s.cardsArtifact(ctx, res.Cards, count)
		}},
		{name: TierLocalQA, backend: domain.BackendLocalQA, run: func(ctx context.Context) (domain.Artifact, error) {
			pairs, err := s.localPairs(ctx, text, count, params)
			if err != nil {
				return domain.Artifact{}, err
			}
			cards := lo.Map(pairs, func(p sourcedPair, _ int) domain.Flashcard {
				return domain.Flashcard{Front: p.Question, Back: p.Answer}
			})
			return s.cardsArtifact(ctx, cards, count)
		}},
		{name: TierHeuristic, run: func(ctx context.Context) (domain.Artifact, error) {
			return s.cardsArtifact(ctx, s.heuristic.Flashcards(text, count), count)
		}},
	}
	return s.runTiers(ctx, domain.KindFlashcard, tiers, func() domain.Artifact {
		return domain.Artifact{Flashcards: []domain.Flashcard{}}
	})
}

func (s *generationService) cardsArtifact(ctx context.Context, cards []domain.Flashcard, count int) (domain.Artifact, error) {
	valid := lo.Filter(cards, func(c domain.Flashcard, _ int) bool { return c.Valid() })
	fronts := lo.Map(valid, func(c domain.Flashcard, _ int) string { return c.Front })
	kept := make([]domain.Flashcard, 0, count)
	for _, i := range s.distinct(ctx, fronts, count) {
		kept = append(kept, valid[i])
	}
	if len(kept) == 0 {
		return domain.Artifact{}, fmt.Errorf("%w: no valid flashcards", domain.ErrMalformedResponse)
	}
	return domain.Artifact{Flashcards: kept}, nil
}

// GenerateSummary tries remote-chat, the local composer, the heuristic
// summary, then the error placeholder.
func (s *generationService) GenerateSummary(ctx context.Context, text string, params domain.GenerationParams) domain.Artifact {
	params = s.normalizeParams(params)

	tiers := []tier{
		{name: TierRemote, backend: domain.BackendRemoteChat, run: func(ctx context.Context) (domain.Artifact, error) {
			raw, err := s.registry.Invoke(ctx, domain.BackendRemoteChat, summaryPrompt(text, params.MaxLength), domain.CompletionOptions{
				Temperature: params.Temperature,
				MaxTokens:   params.MaxLength * 2,
			})
			if err != nil {
				return domain.Artifact{}, err
			}
			out := strings.TrimSpace(extract.Clean(raw.Text))
			if out == "" {
				return domain.Artifact{}, fmt.Errorf("%w: empty summary", domain.ErrMalformedResponse)
			}
			return domain.Artifact{Summary: &domain.Summary{Text: out}}, nil
		}},
		{name: TierLocalSummary, backend: domain.BackendLocalSummary, run: func(ctx context.Context) (domain.Artifact, error) {
			sum, err := s.localSummary(ctx, text, params.SummaryMode)
			return domain.Artifact{Summary: sum}, err
		}},
		{name: TierHeuristic, run: func(ctx context.Context) (domain.Artifact, error) {
			return domain.Artifact{Summary: &domain.Summary{Text: s.heuristic.Summarize(text)}}, nil
		}},
	}
	return s.runTiers(ctx, domain.KindSummary, tiers, func() domain.Artifact {
		return domain.Artifact{Summary: &domain.Summary{Text: PlaceholderSummary, Degraded: true}}
	})
}

func (s *generationService) localSummary(ctx context.Context, text string, mode domain.SummaryMode) (*domain.Summary, error) {
	backend, err := s.registry.Lookup(domain.BackendLocalSummary)
	if err != nil {
		return nil, err
	}
	composer := summary.NewComposer(backend, s.logger)

	if mode == domain.SummaryModeSectioned || (mode == domain.SummaryModeAuto && summary.HasHeadings(text)) {
		sectioned, err := composer.Sectioned(ctx, text)
		if err != nil {
			return nil, err
		}
		return &domain.Summary{Text: summary.Render(sectioned), Sectioned: sectioned}, nil
	}

	flat, err := composer.Flat(ctx, text)
	if err != nil {
		return nil, err
	}
	return &domain.Summary{Text: flat}, nil
}

// ProcessContent builds the full export document. Each part falls back
// independently, so the document is always complete.
func (s *generationService) ProcessContent(ctx context.Context, text string, count int, params domain.GenerationParams) *domain.GeneratedContent {
	sum := s.GenerateSummary(ctx, text, params)
	tests := s.GenerateTests(ctx, text, count, params)
	cards := s.GenerateFlashcards(ctx, text, count, params)

	return &domain.GeneratedContent{
		OriginalText:  text,
		Summary:       sum.Summary.Text,
		TestQuestions: tests.Tests,
		Flashcards:    cards.Flashcards,
		CreatedAt:     s.now(),
	}
}

func (s *generationService) dedupeQuestions(ctx context.Context, questions []domain.TestQuestion, limit int) []domain.TestQuestion {
	texts := lo.Map(questions, func(q domain.TestQuestion, _ int) string { return q.Question })
	out := make([]domain.TestQuestion, 0, limit)
	for _, i := range s.distinct(ctx, texts, limit) {
		out = append(out, questions[i])
	}
	return out
}

// distinct returns the indices of up to limit texts that are neither an
// exact case-insensitive repeat nor, with an embedder configured, a near
// duplicate of an earlier kept text. Embedding failures disable the
// similarity check for the rest of the call.
func (s *generationService) distinct(ctx context.Context, texts []string, limit int) []int {
	useEmbeddings := s.embedder != nil && s.cfg.DedupThreshold > 0
	seen := map[string]bool{}
	var vectors [][]float32
	var kept []int

	for i, t := range texts {
		if len(kept) >= limit {
			break
		}
		key := strings.ToLower(strings.TrimSpace(t))
		if seen[key] {
			continue
		}

		if useEmbeddings {
			vec, err := s.embedder.Generate(ctx, t)
			if err != nil {
				s.logger.Warn("Embedding failed, near-duplicate check disabled", zap.Error(err))
				useEmbeddings = false
			} else if sim := util.MaxSimilarity(vec, vectors); sim >= s.cfg.DedupThreshold {
				s.logger.Debug("Dropping near-duplicate", zap.String("text", t), zap.Float64("similarity", sim))
				continue
			} else {
				vectors = append(vectors, vec)
			}
		}

		seen[key] = true
		kept = append(kept, i)
	}
	return kept
}
