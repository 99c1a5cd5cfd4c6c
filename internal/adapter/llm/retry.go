package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"study-byte/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
)

// RetryingBackend retries transient failures of the wrapped backend with
// exponential backoff: initialDelay*2^attempt plus up to one second of
// jitter. Other errors are returned on the first occurrence.
type RetryingBackend struct {
	next         domain.CompletionBackend
	maxAttempts  int
	initialDelay time.Duration
	logger       *zap.Logger

	jitter func() time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRetryingBackend(next domain.CompletionBackend, maxAttempts int, initialDelay time.Duration, logger *zap.Logger) *RetryingBackend {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return &RetryingBackend{
		next:         next,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		logger:       logger,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
		sleep: sleepContext,
	}
}

func (r *RetryingBackend) ID() domain.BackendID { return r.next.ID() }

func (r *RetryingBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		out, err := r.next.Complete(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrTransientBackend) || attempt == r.maxAttempts-1 {
			break
		}

		delay := r.initialDelay*time.Duration(1<<attempt) + r.jitter()
		r.logger.Warn("Transient backend failure, retrying",
			zap.String("backend", string(r.next.ID())),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if serr := r.sleep(ctx, delay); serr != nil {
			return "", fmt.Errorf("retry of %s interrupted: %w", r.next.ID(), errors.Join(serr, lastErr))
		}
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ domain.CompletionBackend = (*RetryingBackend)(nil)
