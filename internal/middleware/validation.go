package middleware

import (
	"study-byte/internal/domain"
	"study-byte/internal/dto"
	"study-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the validation middleware.
const (
	LocalGenerateRequest = "validated_generate_request"
	LocalContentID       = "validated_content_id"
	LocalPagination      = "validated_pagination"
)

// ValidatedRequest is what handlers read from LocalGenerateRequest.
type ValidatedRequest struct {
	Text    string
	Count   int
	Options dto.GenerationOptions
}

// Pagination is what handlers read from LocalPagination.
type Pagination struct {
	Limit  int
	Offset int
}

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateGenerateRequest parses and validates the generation body.
func (vm *ValidationMiddleware) ValidateGenerateRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.GenerateRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("Request body must be a JSON object")
		}

		opts, errs := dto.ParseOptions(req.Options)
		count, verrs := vm.validator.ValidateGenerateRequest(&req, opts)
		errs = append(errs, verrs...)
		if len(errs) > 0 {
			return errs
		}

		c.Locals(LocalGenerateRequest, ValidatedRequest{Text: req.Text, Count: count, Options: opts})
		return c.Next()
	}
}

// ValidateContentID validates the :id path parameter.
func (vm *ValidationMiddleware) ValidateContentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errs := vm.validator.ValidateContentID(id); len(errs) > 0 {
			return errs
		}
		c.Locals(LocalContentID, id)
		return c.Next()
	}
}

// ValidatePagination reads limit (default 20) and offset (default 0).
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Pagination{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
		if errs := vm.validator.ValidatePagination(p.Limit, p.Offset); len(errs) > 0 {
			return errs
		}
		c.Locals(LocalPagination, p)
		return c.Next()
	}
}
