package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// compactHandler writes "2006-01-02 15:04:05 LEVEL msg → {attrs}" lines.
type compactHandler struct {
	level  slog.Leveler
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	prefix string
}

func newCompactHandler(out io.Writer, level slog.Leveler) *compactHandler {
	return &compactHandler{level: level, mu: &sync.Mutex{}, out: out}
}

func (h *compactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *compactHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	if len(fields) > 0 {
		encoded, err := json.Marshal(fields)
		if err != nil {
			encoded = []byte(fmt.Sprintf("%q", err.Error()))
		}
		b.WriteString(" → ")
		b.Write(encoded)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *compactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *compactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// NewHandler returns the slog.Handler for format writing to out.
func NewHandler(format Format, out io.Writer, level slog.Leveler) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case FormatText:
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	default:
		return newCompactHandler(out, level)
	}
}
