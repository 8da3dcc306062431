// Package middleware provides the built-in middlewares for the model client.
// Each constructor returns a [client.Middleware] ready to be passed to
// [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds a single model call.
//   - [NewRetryMiddleware] retries transient failures (HTTP 429 and 5xx) with
//     exponential backoff and jitter.
//   - [NewLoggingMiddleware] logs every model round with slog.
//
// Middlewares execute outermost-first. With
//
//	client.WithMiddleware(
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	    middleware.NewTimeoutMiddleware(60*time.Second),
//	    middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	)
//
// each retry attempt gets its own deadline and its own log entries.
package middleware
