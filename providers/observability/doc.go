// Package observability defines the interfaces used for tracing, metrics and
// structured logging across the agent.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single injectable
// dependency. The active provider and span travel through a [context.Context]
// via [ContextWithObserver] and [ContextWithSpan]. A nil Provider is valid
// everywhere one is accepted and disables observation.
//
// semconv.go holds the attribute keys, span names and metric names.
package observability
