package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/searchgpt/providers/observability"
)

// Observer implements observability.Provider on top of a *slog.Logger.
type Observer struct {
	logger *slog.Logger
}

var _ observability.Provider = (*Observer)(nil)

// New creates a slog-based observer. Without options the format and level come
// from SEARCHGPT_LOG_FORMAT / SEARCHGPT_LOG_LEVEL (or LOG_FORMAT / LOG_LEVEL)
// and records go to stderr.
//
//	observer := slogobs.New(
//	    slogobs.WithFormat(slogobs.FormatJSON),
//	    slogobs.WithLevel(slog.LevelDebug),
//	)
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(NewHandler(cfg.format, cfg.output, cfg.level))
	}
	return &Observer{logger: logger}
}

// Logger exposes the underlying slog.Logger.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start at debug level. The returned context carries the span.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "Span started", append(span.header("span.start"), toSlog(attrs)...)...)
	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	name      string
	startTime time.Time
	logger    *slog.Logger
	mu        sync.Mutex
	attrs     []observability.Attribute
}

func (s *slogSpan) header(event string) []slog.Attr {
	return []slog.Attr{slog.String("span", s.name), slog.String("event", event)}
}

func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logAttrs := append(s.header("span.end"), slog.Duration(observability.AttrDuration, time.Since(s.startTime)))
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span ended", append(logAttrs, toSlog(s.attrs)...)...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
	}
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, status))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span error", append(s.header("error"), slog.String(observability.AttrError, err.Error()))...)
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span event", append(s.header(name), toSlog(attrs)...)...)
}

// --- METRICS ---

// Counter returns a counter that logs each increment at debug level.
func (o *Observer) Counter(name string) observability.Counter {
	return &slogInstrument{name: name, kind: "counter", logger: o.logger}
}

// Histogram returns a histogram that logs each observation at debug level.
func (o *Observer) Histogram(name string) observability.Histogram {
	return &slogInstrument{name: name, kind: "histogram", logger: o.logger}
}

type slogInstrument struct {
	name   string
	kind   string
	logger *slog.Logger
}

func (i *slogInstrument) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	i.emit(ctx, float64(value), attrs)
}

func (i *slogInstrument) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	i.emit(ctx, value, attrs)
}

func (i *slogInstrument) emit(ctx context.Context, value float64, attrs []observability.Attribute) {
	logAttrs := []slog.Attr{
		slog.String("metric", i.name),
		slog.String("type", i.kind),
		slog.Float64("value", value),
	}
	i.logger.LogAttrs(ctx, slog.LevelDebug, "Metric", append(logAttrs, toSlog(attrs)...)...)
}

// --- LOGGING ---

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, toSlog(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, toSlog(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, toSlog(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, toSlog(attrs)...)
}

func toSlog(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}
