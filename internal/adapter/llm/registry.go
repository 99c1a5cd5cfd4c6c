package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"study-byte/internal/domain"

	"go.uber.org/zap"
)

type registryEntry struct {
	backend domain.CompletionBackend
	reason  string
}

// Registry holds the backends built at start-up for the life of the
// process. A backend that failed to initialise stays listed with the
// reason so tiers depending on it can be skipped.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.BackendID]registryEntry
	logger  *zap.Logger
	now     func() time.Time
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[domain.BackendID]registryEntry),
		logger:  logger,
		now:     time.Now,
	}
}

// Register makes backend available under its ID, replacing any entry.
func (r *Registry) Register(backend domain.CompletionBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[backend.ID()] = registryEntry{backend: backend}
}

func (r *Registry) MarkUnavailable(id domain.BackendID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = registryEntry{reason: reason}
	r.logger.Warn("Backend unavailable", zap.String("backend", string(id)), zap.String("reason", reason))
}

// Available reports whether Lookup would succeed.
func (r *Registry) Available(id domain.BackendID) bool {
	_, err := r.Lookup(id)
	return err == nil
}

func (r *Registry) Lookup(id domain.BackendID) (domain.CompletionBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s not configured", domain.ErrUnavailableBackend, id)
	}
	if e.backend == nil {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrUnavailableBackend, id, e.reason)
	}
	return e.backend, nil
}

// Invoke looks up id and runs one completion, timing it.
func (r *Registry) Invoke(ctx context.Context, id domain.BackendID, prompt domain.Prompt, opts domain.CompletionOptions) (domain.RawCompletion, error) {
	backend, err := r.Lookup(id)
	if err != nil {
		return domain.RawCompletion{BackendID: id}, err
	}
	start := r.now()
	text, err := backend.Complete(ctx, prompt, opts)
	raw := domain.RawCompletion{
		Text:      text,
		BackendID: id,
		Latency:   r.now().Sub(start),
		Succeeded: err == nil,
	}
	return raw, err
}

// Status lists every known backend with "available" or its failure reason.
func (r *Registry) Status() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for id, e := range r.entries {
		if e.backend != nil {
			out[string(id)] = "available"
		} else {
			out[string(id)] = "unavailable: " + e.reason
		}
	}
	return out
}
