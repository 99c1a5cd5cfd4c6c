package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"study-byte/internal/domain"
	"study-byte/internal/dto"
)

// Request limits.
const (
	MaxTextLength  = 100000
	MaxItemCount   = 20
	DefaultCount   = 5
	MaxTemperature = 2.0
	MaxListLimit   = 100
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateText checks the source text is present and within MaxTextLength
// characters.
func (v *Validator) ValidateText(text string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(text) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
	} else if n := utf8.RuneCountInString(text); n > MaxTextLength {
		errors = append(errors, domain.NewOutOfRangeError("text", n, 1, MaxTextLength))
	}
	return errors
}

// ValidateGenerateRequest validates the body and returns the item count
// to use, with 0 replaced by DefaultCount.
func (v *Validator) ValidateGenerateRequest(req *dto.GenerateRequest, opts dto.GenerationOptions) (int, domain.ValidationErrors) {
	errors := v.ValidateText(req.Text)

	count := req.Count
	if count == 0 {
		count = DefaultCount
	}
	if count < 1 || count > MaxItemCount {
		errors = append(errors, domain.NewOutOfRangeError("count", req.Count, 1, MaxItemCount))
	}

	p := opts.Params
	switch t := p.Temperature; {
	case math.IsNaN(t) || math.IsInf(t, 0):
		errors = append(errors, domain.NewInvalidFormatError("options.temperature", strconv.FormatFloat(t, 'g', -1, 64)))
	case t < 0 || t > MaxTemperature:
		errors = append(errors, domain.NewOutOfRangeError("options.temperature", t, 0, MaxTemperature))
	}
	if p.MaxLength < 0 {
		errors = append(errors, domain.NewInvalidFormatError("options.max_length", p.MaxLength))
	}
	if p.WordsPerQuestion < 0 {
		errors = append(errors, domain.NewInvalidFormatError("options.words_per_question", p.WordsPerQuestion))
	}
	switch p.SummaryMode {
	case "", domain.SummaryModeAuto, domain.SummaryModeFlat, domain.SummaryModeSectioned:
	default:
		errors = append(errors, domain.NewInvalidFormatError("options.summary_mode", p.SummaryMode))
	}
	switch opts.Format {
	case "", dto.FormatText, dto.FormatHTML:
	default:
		errors = append(errors, domain.NewInvalidFormatError("options.format", opts.Format))
	}

	return count, errors
}

// ValidateContentID checks id is a ULID.
func (v *Validator) ValidateContentID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !validULID.MatchString(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}
	return errors
}

// ValidatePagination bounds list queries.
func (v *Validator) ValidatePagination(limit, offset int) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if limit < 1 || limit > MaxListLimit {
		errors = append(errors, domain.NewOutOfRangeError("limit", limit, 1, MaxListLimit))
	}
	if offset < 0 {
		errors = append(errors, domain.NewInvalidFormatError("offset", offset))
	}
	return errors
}
