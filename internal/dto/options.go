package dto

import (
	"math"
	"strings"

	"study-byte/internal/domain"

	"github.com/spf13/cast"
)

// Output formats accepted in options.format.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// GenerationOptions are the decoded request options.
type GenerationOptions struct {
	Params domain.GenerationParams
	Format string
}

// ParseOptions coerces the loose options map. Unset keys keep their
// defaults; a value that cannot be coerced is reported as an invalid
// format error and the rest are still decoded.
func ParseOptions(opts map[string]interface{}) (GenerationOptions, domain.ValidationErrors) {
	out := GenerationOptions{Params: domain.DefaultGenerationParams(), Format: FormatText}
	var errs domain.ValidationErrors

	if v, ok := opts["temperature"]; ok && v != nil {
		if f, err := cast.ToFloat64E(v); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, domain.NewInvalidFormatError("options.temperature", v))
		} else {
			out.Params.Temperature = f
		}
	}
	if v, ok := opts["max_length"]; ok && v != nil {
		if n, err := cast.ToIntE(v); err != nil {
			errs = append(errs, domain.NewInvalidFormatError("options.max_length", v))
		} else {
			out.Params.MaxLength = n
		}
	}
	if v, ok := opts["words_per_question"]; ok && v != nil {
		if n, err := cast.ToIntE(v); err != nil {
			errs = append(errs, domain.NewInvalidFormatError("options.words_per_question", v))
		} else {
			out.Params.WordsPerQuestion = n
		}
	}
	if v, ok := opts["summary_mode"]; ok && v != nil {
		out.Params.SummaryMode = domain.SummaryMode(strings.ToLower(cast.ToString(v)))
	}
	if v, ok := opts["format"]; ok && v != nil {
		out.Format = strings.ToLower(cast.ToString(v))
	}
	return out, errs
}
