package conversation

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

// System instructions used by the bundled providers.
const (
	OpenAISystemPrompt = "You are Search GPT, a helpful assistant with the ability to perform web searches and view websites using the tools provided. " +
		"When a user asks you a question, you can use web search to find up-to-date information on that topic. " +
		"You can retrieve the content of webpages from search result links using the Search Website tool. " +
		"Use several tool calls consecutively, performing deep searches and trying your best to extract relevant and helpful information before responding to the user."

	GeminiSystemPrompt = "You are Gemini Search, a helpful assistant with the ability to perform web searches and view websites using the tools provided. " +
		"When a user asks you a question, you can use web search to find up-to-date information on that topic. " +
		"You can retrieve the content of webpages from search result links using the Search Website tool. " +
		"Use several tool calls consecutively, performing deep searches and trying your best to extract relevant and helpful information before responding to the user."
)

// SystemPromptFor returns the system instruction of the named provider,
// falling back to the OpenAI one.
func SystemPromptFor(provider string) string {
	if provider == "gemini" {
		return GeminiSystemPrompt
	}
	return OpenAISystemPrompt
}

// DefaultSeed returns the greeting exchange every new session starts with.
func DefaultSeed() []ai.Message {
	return []ai.Message{
		ai.NewUserMessage("Hi, can you search the web for me?"),
		ai.NewAssistantMessage("Hi there! I can help with that. Can you tell me a bit about your query?"),
	}
}

// Conversation is an append-only message history with its system instruction.
// It is not safe for concurrent use; each query owns its own Conversation.
type Conversation struct {
	id           string
	systemPrompt string
	messages     []ai.Message
}

// New creates a conversation with a fresh id, seeded with the given messages.
func New(systemPrompt string, seed ...ai.Message) *Conversation {
	return &Conversation{
		id:           uuid.NewString(),
		systemPrompt: systemPrompt,
		messages:     slices.Clone(seed),
	}
}

func (c *Conversation) ID() string {
	return c.id
}

func (c *Conversation) SystemPrompt() string {
	return c.systemPrompt
}

// Append adds messages at the end of the history, in order.
func (c *Conversation) Append(ctx context.Context, messages ...ai.Message) {
	span := observability.SpanFromContext(ctx)
	for _, m := range messages {
		if span != nil {
			span.AddEvent(observability.EventMessageAppend,
				observability.String(observability.AttrMessageRole, string(m.Role)),
				observability.Int(observability.AttrMessageLength, len(m.Content)),
			)
		}
		c.messages = append(c.messages, m)
	}
	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrMessagesTotal, len(c.messages)))
	}
}

// Messages returns a copy of the history, so callers cannot reorder or drop entries.
func (c *Conversation) Messages() []ai.Message {
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}
