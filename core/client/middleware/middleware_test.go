package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/ai"
)

// mockSendSequence is a client.SendFunc with a scripted return sequence.
type mockSendSequence struct {
	responses []*ai.ChatResponse
	errors    []error
	callCount int
}

func (m *mockSendSequence) next(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	index := m.callCount
	m.callCount++

	if index < len(m.errors) && m.errors[index] != nil {
		return nil, m.errors[index]
	}
	if index < len(m.responses) {
		return m.responses[index], nil
	}
	return &ai.ChatResponse{Content: "default", FinishReason: "stop"}, nil
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func status(code int) error {
	return fmt.Errorf("openai: %w", &utils.StatusError{StatusCode: code, Body: "busy"})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", status(429), true},
		{"503", status(503), true},
		{"529", status(529), true},
		{"401", status(401), false},
		{"plain error mentioning 500", errors.New("took 500ms"), false},
		{"adapter", fmt.Errorf("%w: %w", ai.ErrAdapter, status(500)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryMiddleware_RecoversFromTransientError(t *testing.T) {
	seq := &mockSendSequence{
		errors:    []error{status(429), status(503)},
		responses: []*ai.ChatResponse{nil, nil, {Content: "ok"}},
	}

	resp, err := NewRetryMiddleware(fastRetry(3))(seq.next)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" || seq.callCount != 3 {
		t.Errorf("content=%q calls=%d", resp.Content, seq.callCount)
	}
}

func TestRetryMiddleware_NonRetryablePropagates(t *testing.T) {
	seq := &mockSendSequence{errors: []error{status(401)}}

	_, err := NewRetryMiddleware(fastRetry(3))(seq.next)(context.Background(), ai.ChatRequest{})
	if err == nil || errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected the raw error, got %v", err)
	}
	if seq.callCount != 1 {
		t.Errorf("calls = %d, want 1", seq.callCount)
	}
}

func TestRetryMiddleware_Exhausted(t *testing.T) {
	seq := &mockSendSequence{errors: []error{status(500), status(500), status(500)}}

	_, err := NewRetryMiddleware(fastRetry(2))(seq.next)(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 500 {
		t.Errorf("last error not wrapped: %v", err)
	}
	if seq.callCount != 3 {
		t.Errorf("calls = %d, want 3", seq.callCount)
	}
}

func TestRetryMiddleware_Disabled(t *testing.T) {
	seq := &mockSendSequence{errors: []error{status(500)}}

	_, err := NewRetryMiddleware(fastRetry(-1))(seq.next)(context.Background(), ai.ChatRequest{})
	if err == nil || errors.Is(err, ErrRetryExhausted) || seq.callCount != 1 {
		t.Errorf("err=%v calls=%d", err, seq.callCount)
	}
}

func TestRetryMiddleware_ContextCancelledDuringBackoff(t *testing.T) {
	seq := &mockSendSequence{errors: []error{status(503), status(503)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	_, err := NewRetryMiddleware(config)(seq.next)(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestComputeBackoff_Capped(t *testing.T) {
	config := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, BackoffFactor: 2, JitterFraction: 0.1}
	for attempt, floor := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second} {
		got := computeBackoff(config, attempt)
		if got < floor || got > floor+floor/10 {
			t.Errorf("attempt %d: backoff %v outside [%v, %v]", attempt, got, floor, floor+floor/10)
		}
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	slow := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return &ai.ChatResponse{}, nil
		}
	}

	_, err := NewTimeoutMiddleware(20*time.Millisecond)(slow)(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	var hasDeadline bool
	next := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		_, hasDeadline = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	}
	if _, err := NewTimeoutMiddleware(0)(next)(context.Background(), ai.ChatRequest{}); err != nil || hasDeadline {
		t.Errorf("zero timeout should be a no-op: err=%v deadline=%v", err, hasDeadline)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	seq := &mockSendSequence{responses: []*ai.ChatResponse{{
		Model:        "gpt-4o",
		Content:      "secret answer",
		FinishReason: "tool_calls",
		ToolCalls:    []ai.ToolCall{{Function: ai.ToolCallFunction{Name: "web_search"}}},
		Usage:        &ai.Usage{TotalTokens: 42},
	}}}

	request := ai.ChatRequest{Model: "gpt-4o", Messages: []ai.Message{ai.NewUserMessage("private question")}}
	if _, err := NewLoggingMiddleware(logger, LogLevelStandard)(seq.next)(context.Background(), request); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"llm send"`, `"msg":"llm send completed"`, `"total_tokens":42`, `"finish_reason":"tool_calls"`, `web_search`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "private question") || strings.Contains(out, "secret answer") {
		t.Errorf("standard level leaked content:\n%s", out)
	}
}

func TestLoggingMiddleware_VerboseAndFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ok := &mockSendSequence{responses: []*ai.ChatResponse{{Content: "secret answer"}}}
	request := ai.ChatRequest{Messages: []ai.Message{ai.NewUserMessage("private question")}}
	if _, err := NewLoggingMiddleware(logger, LogLevelVerbose)(ok.next)(context.Background(), request); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "private question") || !strings.Contains(buf.String(), "secret answer") {
		t.Errorf("verbose level should log content:\n%s", buf.String())
	}

	buf.Reset()
	failing := &mockSendSequence{errors: []error{errors.New("boom")}}
	if _, err := NewLoggingMiddleware(logger, LogLevelMinimal)(failing.next)(context.Background(), request); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), `"msg":"llm send failed"`) || !strings.Contains(buf.String(), "boom") {
		t.Errorf("failure not logged:\n%s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	if ParseLogLevel("minimal") != LogLevelMinimal || ParseLogLevel("verbose") != LogLevelVerbose || ParseLogLevel("") != LogLevelStandard {
		t.Error("unexpected level mapping")
	}
}
