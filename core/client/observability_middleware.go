package client

import (
	"context"
	"time"

	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

// NewObservabilityMiddleware wraps each provider call in an llm.request span,
// counts model rounds per provider and logs the outcome.
//
// Both the span and the observer are injected into the context before calling
// next, so that provider implementations can retrieve them via
// [observability.SpanFromContext] and [observability.ObserverFromContext].
func NewObservabilityMiddleware(observer observability.Provider, providerName, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)

			ctx, span := observer.StartSpan(ctx, observability.SpanLLMRequest,
				observability.String(observability.AttrLLMProvider, providerName),
				observability.String(observability.AttrLLMModel, model),
				observability.String(observability.AttrLLMToolChoice, string(request.ToolChoice)),
			)
			defer span.End()
			ctx = observability.ContextWithObserver(ctx, observer)

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
				observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
			)

			observer.Counter(observability.MetricModelRoundsTotal).Add(ctx, 1,
				observability.String(observability.AttrLLMProvider, providerName),
			)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")
				observer.Error(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				return nil, err
			}

			recordSuccess(ctx, span, observer, response, elapsed, model)
			return response, nil
		}
	}
}

func recordSuccess(ctx context.Context, span observability.Span, observer observability.Provider, response *ai.ChatResponse, elapsed time.Duration, model string) {
	if response == nil {
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, model),
		observability.String(observability.AttrLLMResponseID, response.Id),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
		observability.Int(observability.AttrToolCallsCount, len(response.ToolCalls)),
	}

	if response.Usage != nil {
		usage := []observability.Attribute{
			observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
			observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
		}
		span.SetAttributes(usage...)
		attrs = append(attrs, usage...)
	}

	if response.Content != "" {
		attrs = append(attrs, observability.String("response", utils.TruncateString(response.Content, 100)))
	}

	observer.Info(ctx, "llm send completed", attrs...)
	span.SetStatus(observability.StatusOK, "success")
}

// effectiveModel returns the request-level model when set, falling back to the
// client's configured default. Both being empty is valid (provider chooses).
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return defaultModel
}
