package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Backend and pipeline error taxonomy. Adapters wrap these with
// fmt.Errorf("%w: ...") so callers can branch with errors.Is.
var (
	// ErrTransientBackend marks network failures, timeouts and 408/429/5xx
	// responses. Only these are retried.
	ErrTransientBackend = errors.New("transient backend error")

	// ErrMalformedResponse means extraction produced no usable structure.
	// The tier is abandoned without a retry.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrUnavailableBackend means the backend never initialized. Tiers that
	// depend on it are skipped without an attempt.
	ErrUnavailableBackend = errors.New("backend unavailable")

	// ErrExhaustedFallback means every tier failed. It is only ever logged;
	// callers receive a placeholder artifact instead.
	ErrExhaustedFallback = errors.New("all generation tiers exhausted")

	// ErrPermanentBackend covers rejected requests (bad key, 4xx) that a
	// retry cannot fix.
	ErrPermanentBackend = errors.New("permanent backend error")
)

// ErrorCode represents a specific type of error exposed at the API edge
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Content specific errors
	CodeContentNotFound ErrorCode = "CONTENT_NOT_FOUND"
	CodeStorageDisabled ErrorCode = "STORAGE_DISABLED"
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail value that is echoed in error responses.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewContentNotFoundError(id string) *DomainError {
	return NewError(CodeContentNotFound, fmt.Sprintf("Content not found with ID: %s", id), nil).
		WithContext("id", id)
}

func NewStorageDisabledError() *DomainError {
	return NewError(CodeStorageDisabled, "Content storage is not configured", nil)
}

func NewLLMServiceError(cause error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", cause)
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned as a single error from the validator.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	if len(v) == 1 {
		return v[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeMissingField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeInvalidFormat,
		Message: fmt.Sprintf("%s has an invalid format", field),
		Value:   value,
	}
}

func NewOutOfRangeError(field string, value interface{}, min, max interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("%s must be between %v and %v", field, min, max),
		Value:   value,
	}
}
