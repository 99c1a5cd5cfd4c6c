package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"study-byte/internal/cache"
	"study-byte/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedBackend memoises completions. Concurrent identical requests share
// one upstream call. Cache failures never fail the request.
type CachedBackend struct {
	next    domain.CompletionBackend
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
	logger  *zap.Logger
}

func NewCachedBackend(next domain.CompletionBackend, c domain.Cache, ttl time.Duration, logger *zap.Logger) *CachedBackend {
	return &CachedBackend{next: next, cache: c, ttl: ttl, logger: logger}
}

func (c *CachedBackend) ID() domain.BackendID { return c.next.ID() }

func (c *CachedBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	key := completionKey(c.next.ID(), prompt, opts)

	cached, err := c.cache.Get(ctx, key)
	if err == nil {
		c.logger.Debug("Completion cache hit", zap.String("key", key))
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		c.logger.Warn("Completion cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err, _ := c.sfGroup.Do(key, func() (interface{}, error) {
		out, err := c.next.Complete(ctx, prompt, opts)
		if err != nil {
			return "", err
		}
		if setErr := c.cache.Set(ctx, key, out, c.ttl); setErr != nil {
			c.logger.Warn("Completion cache write failed", zap.String("key", key), zap.Error(setErr))
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// completionKey hashes everything that changes the output.
func completionKey(id domain.BackendID, prompt domain.Prompt, opts domain.CompletionOptions) string {
	payload, _ := json.Marshal(struct {
		Prompt  domain.Prompt
		Options domain.CompletionOptions
	}{prompt, opts})
	return cache.GenerateCacheKey("completion", string(id), cache.HashString(string(payload)))
}

var _ domain.CompletionBackend = (*CachedBackend)(nil)
