package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leofalp/searchgpt/core/parse"
	"github.com/leofalp/searchgpt/internal/jsonschema"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

// Tool is a typed, callable tool. Use [NewTool] to construct one.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)

	// FailurePrefix is prepended to error messages reported back to the model.
	FailurePrefix string
}

// GenericTool is the type-erased view of a Tool stored in a Catalog.
type GenericTool interface {
	// ToolInfo returns the name, description and parameter schema advertised to the model.
	ToolInfo() ai.ToolDescription

	// Call decodes inputJson, runs the tool and returns its textual output.
	// String outputs are returned verbatim, anything else as JSON.
	Call(ctx context.Context, inputJson string) (string, error)

	// FailureMessage renders err as the payload handed back to the model.
	FailureMessage(err error) string
}

type toolOptions struct {
	description   string
	failurePrefix string
}

// Option configures a Tool built by NewTool.
type Option func(*toolOptions)

// WithDescription sets the description the model sees when choosing tools.
func WithDescription(description string) Option {
	return func(o *toolOptions) {
		o.description = description
	}
}

// WithFailurePrefix sets the text placed before the error message when the tool fails,
// e.g. "Error while performing web search" yields "Error while performing web search: <err>".
func WithFailurePrefix(prefix string) Option {
	return func(o *toolOptions) {
		o.failurePrefix = prefix
	}
}

// NewTool builds a Tool whose parameter schema is derived from I.
//
//	search := tool.NewTool("web_search", client.Search,
//	    tool.WithDescription("Searches the web for a query."),
//	    tool.WithFailurePrefix("Error while performing web search"),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...Option) (*Tool[I, O], error) {
	opts := &toolOptions{}
	for _, option := range options {
		option(opts)
	}

	params, err := jsonschema.GenerateJSONSchema[I]()
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	return &Tool[I, O]{
		Name:          name,
		Description:   opts.description,
		Parameters:    params,
		Function:      function,
		FailurePrefix: opts.failurePrefix,
	}, nil
}

func (t *Tool[I, O]) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call decodes the model-supplied arguments into I. Arguments that cannot be
// decoded, even after repair, are logged and replaced by an empty object so
// the tool still runs and reports its own failure.
func (t *Tool[I, O]) Call(ctx context.Context, inputJson string) (string, error) {
	input, err := parse.ParseStringAs[I](inputJson)
	if err != nil {
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Warn(ctx, "Unparsable tool arguments, using empty arguments",
				observability.String(observability.AttrToolName, t.Name),
				observability.String(observability.AttrToolInput, inputJson),
				observability.String(observability.AttrError, fmt.Errorf("%w: %w", ai.ErrAdapter, err).Error()),
			)
		}
		if span := observability.SpanFromContext(ctx); span != nil {
			span.AddEvent("tool.arguments.invalid", observability.Error(err))
		}
		var empty I
		input = empty
	}

	output, err := t.Function(ctx, input)
	if err != nil {
		return "", err
	}

	if s, ok := any(output).(string); ok {
		return s, nil
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("encode %s output: %w", t.Name, err)
	}
	return string(encoded), nil
}

func (t *Tool[I, O]) FailureMessage(err error) string {
	if t.FailurePrefix == "" {
		return err.Error()
	}
	return t.FailurePrefix + ": " + err.Error()
}
