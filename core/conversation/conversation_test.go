package conversation

import (
	"context"
	"testing"

	"github.com/leofalp/searchgpt/providers/ai"
)

func TestNew_SeedIsCopied(t *testing.T) {
	seed := DefaultSeed()
	conv := New(OpenAISystemPrompt, seed...)

	seed[0].Content = "mutated"
	if got := conv.Messages()[0].Content; got != "Hi, can you search the web for me?" {
		t.Errorf("seed aliasing: %q", got)
	}
	if conv.ID() == "" || conv.ID() == New("").ID() {
		t.Error("expected unique non-empty ids")
	}
	if conv.SystemPrompt() != OpenAISystemPrompt {
		t.Error("system prompt not kept")
	}
}

func TestAppend_PreservesPrefix(t *testing.T) {
	ctx := context.Background()
	conv := New("sys", DefaultSeed()...)
	before := conv.Messages()

	call := ai.ToolCall{ID: "call_1", Type: "function", Function: ai.ToolCallFunction{Name: "web_search", Arguments: `{"query":"x"}`}}
	conv.Append(ctx, ai.NewUserMessage("q"))
	conv.Append(ctx,
		ai.NewAssistantMessage("", call),
		ai.NewToolResultMessage(ai.NewToolResultSuccess(call, "result")),
	)

	after := conv.Messages()
	if len(after) != len(before)+3 {
		t.Fatalf("len = %d, want %d", len(after), len(before)+3)
	}
	for i := range before {
		if after[i].Role != before[i].Role || after[i].Content != before[i].Content {
			t.Errorf("message %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if last := after[len(after)-1]; last.Role != ai.RoleTool || last.ToolCallID != "call_1" {
		t.Errorf("unexpected last message: %+v", last)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	conv := New("sys", ai.NewUserMessage("one"))
	msgs := conv.Messages()
	msgs[0].Content = "changed"

	if conv.Messages()[0].Content != "one" {
		t.Error("history mutated through Messages()")
	}
	if conv.Len() != 1 {
		t.Errorf("Len = %d", conv.Len())
	}
}

func TestSystemPromptFor(t *testing.T) {
	if SystemPromptFor("gemini") != GeminiSystemPrompt || SystemPromptFor("openai") != OpenAISystemPrompt {
		t.Error("unexpected prompt selection")
	}
}
