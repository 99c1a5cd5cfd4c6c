// Package llm holds the completion backends and the decorators and
// registry the generation pipeline calls them through.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"study-byte/internal/domain"
)

// classifyStatus wraps err with the sentinel that matches an HTTP status
// code: 408, 429 and 5xx can succeed on retry, anything else cannot.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return fmt.Errorf("%w: status %d: %v", domain.ErrTransientBackend, status, err)
	default:
		return fmt.Errorf("%w: status %d: %v", domain.ErrPermanentBackend, status, err)
	}
}

// classifyTransport handles errors that carry no status code.
func classifyTransport(err error) error {
	if errors.Is(err, domain.ErrTransientBackend) || errors.Is(err, domain.ErrPermanentBackend) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTransientBackend, err)
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"connection refused", "connection reset", "eof", "timeout", "too many requests", "503", "502"} {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%w: %v", domain.ErrTransientBackend, err)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrPermanentBackend, err)
}

func emptyResponse(id domain.BackendID) error {
	return fmt.Errorf("%w: %s returned no content", domain.ErrMalformedResponse, id)
}
