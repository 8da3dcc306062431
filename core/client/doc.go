// Package client sits between the orchestration loop and a raw [ai.Provider].
// It threads every model call through a middleware chain (retry, timeout,
// logging, observability) and classifies failures: adapter errors keep their
// [ai.ErrAdapter] identity, everything else is reported as [ai.ErrUpstreamModel].
//
// The primary entry point is [New], which accepts an [ai.Provider] and a set of
// functional options (e.g. [WithModel], [WithObserver], [WithMiddleware]).
package client
