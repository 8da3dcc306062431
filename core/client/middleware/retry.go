package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/leofalp/searchgpt/core/client"
	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero values
// are replaced with the defaults documented below.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first failure.
	// Default: 3. A negative value disables retrying.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier. Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds up to JitterFraction*backoff of random noise. Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether err should trigger a retry.
	// Default: [IsTransient].
	RetryableFunc func(error) bool
}

// transientStatus lists the HTTP statuses worth retrying.
var transientStatus = map[int]bool{429: true, 500: true, 502: true, 503: true, 529: true}

// IsTransient reports whether err carries a retryable HTTP status
// (429, 500, 502, 503, 529). Adapter errors and cancellations never are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ai.ErrAdapter) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return transientStatus[statusErr.StatusCode]
	}
	return false
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = IsTransient
	}
}

// computeBackoff returns min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) plus jitter.
func computeBackoff(config RetryConfig, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// NewRetryMiddleware retries failed model calls according to config. On
// exhaustion the returned error wraps both [ErrRetryExhausted] and the last
// provider error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	applyRetryDefaults(&config)

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					backoff := computeBackoff(config, attempt-1)
					if observer := observability.ObserverFromContext(ctx); observer != nil {
						observer.Warn(ctx, "Retrying model call",
							observability.Int(observability.AttrAttempt, attempt),
							observability.Duration("backoff", backoff),
							observability.Error(lastErr),
						)
					}
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(backoff):
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}

				lastErr = err
				if !config.RetryableFunc(err) {
					return nil, err
				}
			}

			if config.MaxRetries == 0 {
				return nil, lastErr
			}
			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
