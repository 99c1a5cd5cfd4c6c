package domain

import (
	"context"
	"time"
)

// BackendID names a completion backend in the registry.
type BackendID string

const (
	BackendRemoteChat      BackendID = "remote-chat"
	BackendLocalQA         BackendID = "local-qa"
	BackendLocalDistractor BackendID = "local-distractor"
	BackendLocalSummary    BackendID = "local-summary"
)

// Prompt is a system/user pair. Text-to-text backends concatenate the two.
type Prompt struct {
	System string
	User   string
}

// CompletionOptions carries generation parameters. Backends apply the
// subset their transport supports and ignore the rest.
type CompletionOptions struct {
	Temperature   float64
	MaxTokens     int
	MinLength     int
	NumBeams      int
	LengthPenalty float64
	// JSON asks the backend for a JSON-only response where supported.
	JSON bool
}

// CompletionBackend is the opaque text-completion capability. Transport
// failures must be returned, wrapped with ErrTransientBackend when a retry
// could succeed.
type CompletionBackend interface {
	ID() BackendID
	Complete(ctx context.Context, prompt Prompt, opts CompletionOptions) (string, error)
}

// RawCompletion records one backend attempt. It is discarded after extraction.
type RawCompletion struct {
	Text      string
	BackendID BackendID
	Latency   time.Duration
	Succeeded bool
}
