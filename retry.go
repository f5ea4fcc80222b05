package duallang

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// SplitOnMismatch halves a batch whose result count is still wrong after
	// the last retry and sends each half on its own.
	SplitOnMismatch bool
}

// DefaultRetryConfig returns the retry policy used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		SplitOnMismatch: true,
	}
}

// backoff returns the pause after the given zero-based failed attempt.
func (c RetryConfig) backoff(attempt int) time.Duration {
	if c.BaseDelay <= 0 {
		return 0
	}
	d := c.BaseDelay << attempt
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		return c.MaxDelay
	}
	return d
}

// WithRetry calls fn until it succeeds, fails with an error IsRetryable
// rejects, or MaxRetries retries have been made. fn receives the zero-based
// attempt number.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		t := time.NewTimer(cfg.backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}

// IsRetryable reports whether a gateway error may succeed on a new attempt:
// provider errors flagged retryable, and result count mismatches.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	var mismatch *CountMismatchError
	return errors.As(err, &mismatch)
}

// RetryableGateway retries failed batches with exponential backoff. A reply
// with the wrong number of results counts as a retryable failure.
type RetryableGateway struct {
	gateway Gateway
	config  RetryConfig
	logger  *zap.Logger
}

// NewRetryableGateway creates a gateway that retries retryable failures.
// A nil logger discards log output.
func NewRetryableGateway(gateway Gateway, cfg RetryConfig, logger *zap.Logger) *RetryableGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryableGateway{
		gateway: gateway,
		config:  cfg,
		logger:  logger,
	}
}

// Transform implements Gateway.
func (g *RetryableGateway) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	results, err := WithRetry(ctx, g.config, func(attempt int) ([]string, error) {
		results, err := g.gateway.Transform(ctx, req)
		if err == nil && len(results) != len(req.Texts) {
			err = &CountMismatchError{Expected: len(req.Texts), Got: len(results)}
		}
		if err != nil && IsRetryable(err) && attempt < g.config.MaxRetries {
			g.logger.Info("translation attempt failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("texts", len(req.Texts)),
				zap.Error(err),
			)
		}
		return results, err
	})

	var mismatch *CountMismatchError
	if err != nil && g.config.SplitOnMismatch && len(req.Texts) > 1 && errors.As(err, &mismatch) {
		return g.split(ctx, req)
	}
	return results, err
}

// split sends the two halves of req separately, each with a fresh retry
// budget, and joins their results in order.
func (g *RetryableGateway) split(ctx context.Context, req TransformRequest) ([]string, error) {
	mid := len(req.Texts) / 2
	g.logger.Info("result count still wrong, splitting batch",
		zap.Int("texts", len(req.Texts)),
		zap.Int("first_half", mid),
	)

	first, second := req, req
	first.Texts = req.Texts[:mid]
	second.Texts = req.Texts[mid:]

	a, err := g.Transform(ctx, first)
	if err != nil {
		return nil, err
	}
	b, err := g.Transform(ctx, second)
	if err != nil {
		return nil, err
	}
	return append(append(make([]string, 0, len(req.Texts)), a...), b...), nil
}
