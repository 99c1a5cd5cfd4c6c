package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBackend is a mock type for domain.CompletionBackend
type MockBackend struct {
	mock.Mock
	id domain.BackendID
}

func (m *MockBackend) ID() domain.BackendID { return m.id }

func (m *MockBackend) Complete(ctx context.Context, prompt domain.Prompt, opts domain.CompletionOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{408, domain.ErrTransientBackend},
		{429, domain.ErrTransientBackend},
		{500, domain.ErrTransientBackend},
		{503, domain.ErrTransientBackend},
		{400, domain.ErrPermanentBackend},
		{401, domain.ErrPermanentBackend},
		{404, domain.ErrPermanentBackend},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.ErrorIs(t, classifyStatus(tt.status, errors.New("boom")), tt.want)
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	assert.ErrorIs(t, classifyTransport(timeoutErr{}), domain.ErrTransientBackend)
	assert.ErrorIs(t, classifyTransport(fmt.Errorf("post: %w", context.DeadlineExceeded)), domain.ErrTransientBackend)
	assert.ErrorIs(t, classifyTransport(errors.New("dial tcp 127.0.0.1:11434: connect: connection refused")), domain.ErrTransientBackend)
	assert.ErrorIs(t, classifyTransport(errors.New("model \"x\" not found")), domain.ErrPermanentBackend)

	canceled := classifyTransport(context.Canceled)
	assert.ErrorIs(t, canceled, context.Canceled)
	assert.NotErrorIs(t, canceled, domain.ErrTransientBackend)

	already := fmt.Errorf("%w: x", domain.ErrPermanentBackend)
	assert.Equal(t, already, classifyTransport(already))
}

func newTestRetrying(next domain.CompletionBackend, attempts int) (*RetryingBackend, *[]time.Duration) {
	var slept []time.Duration
	r := NewRetryingBackend(next, attempts, time.Second, zap.NewNop())
	r.jitter = func() time.Duration { return 250 * time.Millisecond }
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func TestRetryingBackend(t *testing.T) {
	ctx := context.Background()
	prompt := domain.Prompt{User: "hi"}
	transient := fmt.Errorf("%w: 503", domain.ErrTransientBackend)

	t.Run("recovers after transient failures", func(t *testing.T) {
		b := &MockBackend{id: domain.BackendRemoteChat}
		b.On("Complete", ctx, prompt, mock.Anything).Return("", transient).Twice()
		b.On("Complete", ctx, prompt, mock.Anything).Return("ok", nil).Once()

		r, slept := newTestRetrying(b, 3)
		out, err := r.Complete(ctx, prompt, domain.CompletionOptions{})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, []time.Duration{1250 * time.Millisecond, 2250 * time.Millisecond}, *slept)
		b.AssertExpectations(t)
	})

	t.Run("gives up after max attempts with the last error", func(t *testing.T) {
		b := &MockBackend{id: domain.BackendRemoteChat}
		last := fmt.Errorf("%w: 429", domain.ErrTransientBackend)
		b.On("Complete", ctx, prompt, mock.Anything).Return("", transient).Twice()
		b.On("Complete", ctx, prompt, mock.Anything).Return("", last).Once()

		r, slept := newTestRetrying(b, 3)
		_, err := r.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.Equal(t, last, err)
		assert.Len(t, *slept, 2)
		b.AssertNumberOfCalls(t, "Complete", 3)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		b := &MockBackend{id: domain.BackendRemoteChat}
		b.On("Complete", ctx, prompt, mock.Anything).Return("", domain.ErrPermanentBackend).Once()

		r, slept := newTestRetrying(b, 3)
		_, err := r.Complete(ctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrPermanentBackend)
		assert.Empty(t, *slept)
		b.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("cancellation stops the backoff", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		b := &MockBackend{id: domain.BackendRemoteChat}
		b.On("Complete", cctx, prompt, mock.Anything).Return("", transient).Once()

		r, _ := newTestRetrying(b, 3)
		_, err := r.Complete(cctx, prompt, domain.CompletionOptions{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, domain.ErrTransientBackend)
		b.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("id passes through", func(t *testing.T) {
		r, _ := newTestRetrying(&MockBackend{id: domain.BackendLocalQA}, 0)
		assert.Equal(t, domain.BackendLocalQA, r.ID())
		assert.Equal(t, DefaultMaxAttempts, r.maxAttempts)
	})
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zap.NewNop())

	remote := &MockBackend{id: domain.BackendRemoteChat}
	remote.On("Complete", ctx, domain.Prompt{User: "q"}, domain.CompletionOptions{}).Return("answer", nil).Once()
	reg.Register(remote)
	reg.MarkUnavailable(domain.BackendLocalQA, "no model configured")

	tick := time.Unix(0, 0)
	reg.now = func() time.Time {
		tick = tick.Add(40 * time.Millisecond)
		return tick
	}

	t.Run("invoke records latency", func(t *testing.T) {
		raw, err := reg.Invoke(ctx, domain.BackendRemoteChat, domain.Prompt{User: "q"}, domain.CompletionOptions{})
		require.NoError(t, err)
		assert.Equal(t, domain.RawCompletion{
			Text:      "answer",
			BackendID: domain.BackendRemoteChat,
			Latency:   40 * time.Millisecond,
			Succeeded: true,
		}, raw)
	})

	t.Run("unavailable backends", func(t *testing.T) {
		_, err := reg.Lookup(domain.BackendLocalQA)
		assert.ErrorIs(t, err, domain.ErrUnavailableBackend)
		assert.ErrorContains(t, err, "no model configured")

		_, err = reg.Invoke(ctx, domain.BackendLocalSummary, domain.Prompt{}, domain.CompletionOptions{})
		assert.ErrorIs(t, err, domain.ErrUnavailableBackend)

		assert.True(t, reg.Available(domain.BackendRemoteChat))
		assert.False(t, reg.Available(domain.BackendLocalQA))
	})

	t.Run("status", func(t *testing.T) {
		assert.Equal(t, map[string]string{
			"remote-chat": "available",
			"local-qa":    "unavailable: no model configured",
		}, reg.Status())
	})
}
