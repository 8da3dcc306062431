// Package slogobs provides an observability.Provider backed by log/slog.
// Spans and metric updates are emitted as debug records; log calls map to
// their slog levels. The main entry point is [New].
package slogobs
