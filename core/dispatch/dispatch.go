package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
	"github.com/leofalp/searchgpt/providers/observability/slogobs"
	"github.com/leofalp/searchgpt/providers/tool"
)

// Dispatcher resolves tool calls against a fixed catalog.
type Dispatcher struct {
	catalog  *tool.Catalog
	observer observability.Provider
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the observer receiving dispatch logs, spans and metrics.
// Without it failures are logged through a default slog observer.
func WithObserver(observer observability.Provider) Option {
	return func(d *Dispatcher) {
		if observer != nil {
			d.observer = observer
		}
	}
}

func New(catalog *tool.Catalog, options ...Option) *Dispatcher {
	d := &Dispatcher{catalog: catalog}
	for _, option := range options {
		option(d)
	}
	if d.observer == nil {
		d.observer = slogobs.New()
	}
	return d
}

// Descriptions returns the schemas of the registered tools.
func (d *Dispatcher) Descriptions() []ai.ToolDescription {
	return d.catalog.Descriptions()
}

// Dispatch runs one tool call and always returns its result. An unknown name
// yields "No function found for <name>"; a failing tool yields its failure
// message. Both are logged at warn level.
func (d *Dispatcher) Dispatch(ctx context.Context, call ai.ToolCall) ai.ToolResult {
	name := call.Function.Name

	t, ok := d.catalog.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ai.ErrToolLookup, name)
		d.observer.Warn(ctx, "Tool dispatch failed",
			observability.String(observability.AttrToolName, name),
			observability.String(observability.AttrToolCallID, call.ID),
			observability.Error(err),
		)
		d.record(ctx, observability.ToolLabelUnknown, observability.OutcomeNotFound, 0)
		return ai.NewToolResultError(call, "No function found for "+name)
	}

	ctx, span := d.observer.StartSpan(ctx, observability.SpanToolExecution,
		observability.String(observability.AttrToolName, name),
		observability.String(observability.AttrToolCallID, call.ID),
	)
	defer span.End()
	ctx = observability.ContextWithObserver(ctx, d.observer)

	start := time.Now()
	output, err := t.Call(ctx, call.Function.Arguments)
	elapsed := time.Since(start)

	if err != nil {
		message := t.FailureMessage(err)
		span.RecordError(err)
		span.SetStatus(observability.StatusError, message)
		d.observer.Warn(ctx, message,
			observability.String(observability.AttrToolName, name),
			observability.String(observability.AttrToolCallID, call.ID),
			observability.String(observability.AttrToolInput, call.Function.Arguments),
			observability.Error(fmt.Errorf("%w: %w", ai.ErrToolExecution, err)),
			observability.Duration(observability.AttrDuration, elapsed),
		)
		d.record(ctx, name, observability.OutcomeError, elapsed)
		return ai.NewToolResultError(call, message)
	}

	span.SetStatus(observability.StatusOK, "")
	span.SetAttributes(observability.Int(observability.AttrToolOutput, len(output)))
	d.observer.Debug(ctx, "Tool executed",
		observability.String(observability.AttrToolName, name),
		observability.String(observability.AttrToolInput, call.Function.Arguments),
		observability.Duration(observability.AttrDuration, elapsed),
	)
	d.record(ctx, name, observability.OutcomeSuccess, elapsed)
	return ai.NewToolResultSuccess(call, output)
}

// DispatchAll runs calls one after another, in order, and returns exactly one
// result per call at the same index.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []ai.ToolCall) []ai.ToolResult {
	results := make([]ai.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.Dispatch(ctx, call))
	}
	return results
}

func (d *Dispatcher) record(ctx context.Context, name, outcome string, elapsed time.Duration) {
	d.observer.Counter(observability.MetricToolDispatchTotal).Add(ctx, 1,
		observability.String(observability.AttrToolName, name),
		observability.String(observability.AttrToolOutcome, outcome),
	)
	if outcome != observability.OutcomeNotFound {
		d.observer.Histogram(observability.MetricToolDispatchSeconds).Record(ctx, elapsed.Seconds(),
			observability.String(observability.AttrToolName, name),
		)
	}
}
