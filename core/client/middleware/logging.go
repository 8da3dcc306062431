package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/searchgpt/core/client"
	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, finish reason and requested tools.
	LogLevelStandard

	// LogLevelVerbose adds the latest message and the response content, each
	// truncated to 500 characters. It logs raw user text; keep it out of production.
	LogLevelVerbose
)

const truncateLen = 500

// ParseLogLevel maps "minimal", "standard" and "verbose" to a LogLevel,
// defaulting to LogLevelStandard.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "minimal":
		return LogLevelMinimal
	case "verbose":
		return LogLevelVerbose
	default:
		return LogLevelStandard
	}
}

// NewLoggingMiddleware logs every model round before and after the provider call.
// A nil logger falls back to slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", buildRequestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", buildResponseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("message_count", len(request.Messages)),
			slog.String("tool_choice", string(request.ToolChoice)),
		)
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}

	return attrs
}

func buildResponseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	if response == nil {
		return []any{slog.Duration("duration", elapsed)}
	}

	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard {
		if response.FinishReason != "" {
			attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
		}
		if len(response.ToolCalls) > 0 {
			names := make([]string, len(response.ToolCalls))
			for i, call := range response.ToolCalls {
				names[i] = call.Function.Name
			}
			attrs = append(attrs, slog.Any("tool_calls", names))
		}
	}

	if level >= LogLevelVerbose {
		if response.Content != "" {
			attrs = append(attrs, slog.String("response_content", utils.TruncateString(response.Content, truncateLen)))
		}
		if len(response.ToolCalls) > 0 {
			attrs = append(attrs, slog.String("tool_call_args", utils.TruncateString(utils.JSONToString(response.ToolCalls), truncateLen)))
		}
	}

	return attrs
}
