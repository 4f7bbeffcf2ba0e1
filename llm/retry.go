package llm

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retries with exponential backoff.
type RetryPolicy struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" toml:"max_retries"` // attempts after the first
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" toml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" toml:"max_delay"`
	Multiplier float64       `json:"multiplier,omitempty" yaml:"multiplier,omitempty" toml:"multiplier,omitempty"`

	// Jitter scales each delay by a random factor in [0.5, 1.5).
	Jitter bool `json:"jitter" yaml:"jitter" toml:"jitter"`

	// OnRetry is called before each wait.
	OnRetry func(err error, attempt int, delay time.Duration) `json:"-" yaml:"-" toml:"-"`
}

// DefaultRetryPolicy returns two retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2,
		Jitter:     true,
	}
}

// Delay returns the wait before retry attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	delay := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 {
		delay = math.Min(delay, float64(p.MaxDelay))
	}
	if p.Jitter {
		delay *= 0.5 + rand.Float64()
	}
	return time.Duration(delay)
}

// Retry calls fn until it succeeds, fails with a non-retryable error, or the
// policy is exhausted. The last error is returned.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	for attempt := 0; attempt < policy.MaxRetries; attempt++ {
		if !IsRetryable(err) {
			return zero, err
		}

		delay := policy.Delay(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(err, attempt+1, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
	}
	return zero, err
}

// retryingClient retries a Client's retryable failures.
type retryingClient struct {
	next   Client
	policy RetryPolicy
	logger *slog.Logger
}

// NewRetryingClient wraps next with policy. Retries are logged at warn level.
func NewRetryingClient(next Client, policy RetryPolicy) Client {
	return &retryingClient{next: next, policy: policy, logger: slog.Default()}
}

// Complete implements Client.
func (c *retryingClient) Complete(ctx context.Context, req Request) (*Response, error) {
	policy := c.policy
	user := policy.OnRetry
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		c.logger.Warn("retrying completion", "attempt", attempt, "delay", delay, "error", err)
		if user != nil {
			user(err, attempt, delay)
		}
	}
	return Retry(ctx, policy, func(ctx context.Context) (*Response, error) {
		return c.next.Complete(ctx, req)
	})
}
