package middleware

import (
	"context"
	"time"

	"github.com/leofalp/searchgpt/core/client"
	"github.com/leofalp/searchgpt/providers/ai"
)

// NewTimeoutMiddleware adds a per-call deadline. A shorter deadline already on
// the caller's context wins. A non-positive timeout disables the middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
