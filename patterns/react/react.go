package react

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/searchgpt/core/client"
	"github.com/leofalp/searchgpt/core/conversation"
	"github.com/leofalp/searchgpt/core/dispatch"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
	"github.com/leofalp/searchgpt/providers/observability/slogobs"
)

// DefaultMaxRounds is the number of tool rounds allowed before the loop forces
// a final answer.
const DefaultMaxRounds = 10

// Agent answers queries by alternating model calls and tool dispatch. It keeps
// no per-query state and may serve concurrent queries, each with its own
// Conversation.
type Agent struct {
	client     *client.Client
	dispatcher *dispatch.Dispatcher
	maxRounds  int
	toolChoice ai.ToolChoice
	generation *ai.GenerationConfig
	observer   observability.Provider
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxRounds bounds the number of tool rounds. Non-positive values are ignored.
func WithMaxRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// WithToolChoice sets the tool-calling mode of regular rounds. The forced
// final round always uses ai.ToolChoiceNone.
func WithToolChoice(choice ai.ToolChoice) Option {
	return func(a *Agent) {
		if choice != "" {
			a.toolChoice = choice
		}
	}
}

func WithGenerationConfig(config *ai.GenerationConfig) Option {
	return func(a *Agent) {
		a.generation = config
	}
}

// WithObserver overrides the observer, which otherwise comes from the client.
func WithObserver(observer observability.Provider) Option {
	return func(a *Agent) {
		if observer != nil {
			a.observer = observer
		}
	}
}

func New(c *client.Client, d *dispatch.Dispatcher, options ...Option) (*Agent, error) {
	if c == nil || d == nil {
		return nil, errors.New("react: client and dispatcher are required")
	}

	a := &Agent{
		client:     c,
		dispatcher: d,
		maxRounds:  DefaultMaxRounds,
		toolChoice: ai.ToolChoiceAuto,
		observer:   c.Observer(),
	}
	for _, option := range options {
		option(a)
	}
	if a.observer == nil {
		a.observer = slogobs.New()
	}
	return a, nil
}

func (a *Agent) MaxRounds() int {
	return a.maxRounds
}

// Answer appends query to conv and runs the loop until the model replies
// without tool calls. Every model turn and tool result is appended to conv.
//
// Tool failures never abort the loop; they reach the model as error results.
// Errors from the model call itself are returned, wrapped with
// ai.ErrUpstreamModel or ai.ErrAdapter, together with an empty answer.
//
// After maxRounds tool rounds one last call is made with tool calling
// disabled and a notice is appended to its answer.
func (a *Agent) Answer(ctx context.Context, conv *conversation.Conversation, query string) (string, error) {
	ctx, span := a.observer.StartSpan(ctx, observability.SpanAnswer,
		observability.String(observability.AttrConversationID, conv.ID()),
	)
	defer span.End()

	conv.Append(ctx, ai.NewUserMessage(query))

	var buf string
	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return "", err
		}

		final := round >= a.maxRounds
		choice := a.toolChoice
		if final {
			choice = ai.ToolChoiceNone
		}

		response, err := a.client.Send(ctx, a.request(conv, choice))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "model call failed")
			return "", err
		}

		if !response.HasToolCalls() || final {
			text := response.Text()
			conv.Append(ctx, ai.NewAssistantMessage(text))

			answer := strings.TrimSpace(strings.TrimSpace(buf) + "\n\n" + text)
			if final {
				a.observer.Warn(ctx, "Tool-call round limit reached",
					observability.String(observability.AttrConversationID, conv.ID()),
					observability.Int(observability.AttrRound, round),
				)
				answer = strings.TrimSpace(answer + "\n\n" + truncationNotice(a.maxRounds))
			}
			span.SetAttributes(observability.Int(observability.AttrRound, round))
			span.SetStatus(observability.StatusOK, "")
			return answer, nil
		}

		calls := response.ToolCalls
		a.observer.Debug(ctx, "Dispatching tool calls",
			observability.Int(observability.AttrRound, round+1),
			observability.Int(observability.AttrToolCallsCount, len(calls)),
		)

		conv.Append(ctx, ai.NewAssistantMessage(response.Content, calls...))
		buf = strings.TrimSpace(buf) + "\n\n" + TraceLine(calls) + "\n\n" + response.Content

		results := a.dispatcher.DispatchAll(ctx, calls)
		for _, result := range results {
			conv.Append(ctx, ai.NewToolResultMessage(result))
		}
	}
}

func (a *Agent) request(conv *conversation.Conversation, choice ai.ToolChoice) ai.ChatRequest {
	return ai.ChatRequest{
		SystemPrompt:     conv.SystemPrompt(),
		Messages:         conv.Messages(),
		Tools:            a.dispatcher.Descriptions(),
		ToolChoice:       choice,
		GenerationConfig: a.generation,
	}
}

func truncationNotice(rounds int) string {
	return fmt.Sprintf("[Stopped after %d tool-call rounds; the answer may be incomplete.]", rounds)
}
