package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryClient decorates a Client with bounded exponential-backoff retries
// on generation and embedding calls. After the attempt budget is spent the
// last error propagates unchanged; there is no silent degradation.
type retryClient struct {
	inner      Client
	maxRetries uint64
}

var _ Client = (*retryClient)(nil)

// WithRetry wraps a client so transient backend failures are retried with
// exponential backoff, up to maxRetries additional attempts per call.
func WithRetry(inner Client, maxRetries int) Client {
	if maxRetries <= 0 {
		return inner
	}
	return &retryClient{inner: inner, maxRetries: uint64(maxRetries)}
}

func (r *retryClient) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)
}

// Generate retries the inner call on failure.
func (r *retryClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	attempt := 0
	return backoff.RetryWithData(func() (string, error) {
		attempt++
		response, err := r.inner.Generate(ctx, req)
		if err != nil {
			slog.Warn("generate attempt failed", "model", req.Model, "attempt", attempt, "error", err)
		}
		return response, err
	}, r.policy(ctx))
}

// Embed retries the inner call on failure.
func (r *retryClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	attempt := 0
	return backoff.RetryWithData(func() ([]float32, error) {
		attempt++
		vector, err := r.inner.Embed(ctx, model, text)
		if err != nil {
			slog.Warn("embed attempt failed", "model", model, "attempt", attempt, "error", err)
		}
		return vector, err
	}, r.policy(ctx))
}

// TestConnection is a cheap probe and is not retried.
func (r *retryClient) TestConnection(ctx context.Context) (bool, error) {
	return r.inner.TestConnection(ctx)
}
