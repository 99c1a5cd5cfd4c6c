package handler

import (
	"study-byte/internal/domain"
	"study-byte/internal/dto"
	"study-byte/internal/middleware"
	"study-byte/internal/summary"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContentHandler serves the generation endpoints. repo may be nil, in
// which case documents are generated but not stored.
type ContentHandler struct {
	service domain.GenerationService
	repo    domain.ContentRepository
	logger  *zap.Logger
}

func NewContentHandler(service domain.GenerationService, repo domain.ContentRepository, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{service: service, repo: repo, logger: logger}
}

// Register mounts every route on api, which is expected to be the /api group.
func (h *ContentHandler) Register(api fiber.Router, vm *middleware.ValidationMiddleware) {
	api.Post("/tests", vm.ValidateGenerateRequest(), h.GenerateTests)
	api.Post("/flashcards", vm.ValidateGenerateRequest(), h.GenerateFlashcards)
	api.Post("/summary", vm.ValidateGenerateRequest(), h.GenerateSummary)
	api.Post("/content", vm.ValidateGenerateRequest(), h.ProcessContent)
	api.Get("/content", vm.ValidatePagination(), h.ListContent)
	api.Get("/content/:id", vm.ValidateContentID(), h.GetContent)
}

func validated(c *fiber.Ctx) middleware.ValidatedRequest {
	req, _ := c.Locals(middleware.LocalGenerateRequest).(middleware.ValidatedRequest)
	return req
}

// GenerateTests godoc
// @Summary Generate multiple-choice questions
// @Description Runs the test question fallback chain. Always returns at least one valid question.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Source text and options"
// @Success 200 {object} dto.TestsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /tests [post]
func (h *ContentHandler) GenerateTests(c *fiber.Ctx) error {
	req := validated(c)
	art := h.service.GenerateTests(c.UserContext(), req.Text, req.Count, req.Options.Params)
	return c.JSON(dto.TestsResponse{Tier: art.Tier, Degraded: art.Degraded, Questions: art.Tests})
}

// GenerateFlashcards godoc
// @Summary Generate flashcards
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Source text and options"
// @Success 200 {object} dto.FlashcardsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /flashcards [post]
func (h *ContentHandler) GenerateFlashcards(c *fiber.Ctx) error {
	req := validated(c)
	art := h.service.GenerateFlashcards(c.UserContext(), req.Text, req.Count, req.Options.Params)
	cards := art.Flashcards
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	return c.JSON(dto.FlashcardsResponse{Tier: art.Tier, Degraded: art.Degraded, Flashcards: cards})
}

// GenerateSummary godoc
// @Summary Summarize text
// @Description Set options.format to "html" to also receive the summary rendered as HTML.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Source text and options"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /summary [post]
func (h *ContentHandler) GenerateSummary(c *fiber.Ctx) error {
	req := validated(c)
	art := h.service.GenerateSummary(c.UserContext(), req.Text, req.Options.Params)

	resp := dto.SummaryResponse{Tier: art.Tier, Degraded: art.Degraded}
	if art.Summary != nil {
		resp.Summary = art.Summary.Text
		resp.Sectioned = art.Summary.Sectioned
	}
	if req.Options.Format == dto.FormatHTML {
		html, err := summary.RenderHTML(resp.Summary)
		if err != nil {
			return domain.NewInternalError("Failed to render summary", err)
		}
		resp.HTML = html
	}
	return c.JSON(resp)
}

// ProcessContent godoc
// @Summary Generate the full study document
// @Description Produces summary, questions and flashcards. The document is stored when storage is configured and its id is returned.
// @Tags content
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Source text and options"
// @Success 200 {object} dto.ContentResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /content [post]
func (h *ContentHandler) ProcessContent(c *fiber.Ctx) error {
	req := validated(c)
	ctx := c.UserContext()
	doc := h.service.ProcessContent(ctx, req.Text, req.Count, req.Options.Params)

	if h.repo != nil {
		if err := h.repo.Save(ctx, doc); err != nil {
			return domain.NewInternalError("Failed to store generated content", err)
		}
		h.logger.Info("Stored generated content", zap.String("id", doc.ID))
	}
	return c.JSON(dto.NewContentResponse(doc))
}

// GetContent godoc
// @Summary Get a stored document
// @Tags content
// @Produce json
// @Param id path string true "Content ID (ULID)"
// @Success 200 {object} dto.ContentResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 501 {object} middleware.ErrorResponse
// @Router /content/{id} [get]
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	if h.repo == nil {
		return domain.NewStorageDisabledError()
	}
	id, _ := c.Locals(middleware.LocalContentID).(string)
	doc, err := h.repo.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContentResponse(doc))
}

// ListContent godoc
// @Summary List stored documents, newest first
// @Tags content
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ContentListResponse
// @Failure 501 {object} middleware.ErrorResponse
// @Router /content [get]
func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	if h.repo == nil {
		return domain.NewStorageDisabledError()
	}
	p, _ := c.Locals(middleware.LocalPagination).(middleware.Pagination)
	docs, err := h.repo.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	resp := dto.ContentListResponse{Items: make([]dto.ContentResponse, 0, len(docs)), Limit: p.Limit, Offset: p.Offset}
	for _, d := range docs {
		resp.Items = append(resp.Items, dto.NewContentResponse(d))
	}
	return c.JSON(resp)
}
