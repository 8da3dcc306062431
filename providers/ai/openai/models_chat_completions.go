package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/searchgpt/core/parse"
	"github.com/leofalp/searchgpt/internal/jsonschema"
	"github.com/leofalp/searchgpt/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         *float32      `json:"temperature,omitempty"`
	TopP                *float32      `json:"top_p,omitempty"`
	MaxCompletionTokens *int          `json:"max_completion_tokens,omitempty"`

	Tools             []chatTool `json:"tools,omitempty"`
	ToolChoice        string     `json:"tool_choice,omitempty"` // "auto", "none", "required"
	ParallelToolCalls *bool      `json:"parallel_tool_calls,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"` // system, user, assistant, tool
	Content    *string        `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // role=tool
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // role=assistant
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	Refusal   string         `json:"refusal,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToChatCompletion flattens the history into chat messages. Failed tool
// results travel as {"error": "..."} in the tool message content.
func requestToChatCompletion(request ai.ChatRequest) (chatCompletionRequest, error) {
	if err := ai.ValidateToolTurns(request.Messages); err != nil {
		return chatCompletionRequest{}, err
	}

	model := request.Model
	if model == "" {
		model = DefaultModel
	}
	req := chatCompletionRequest{Model: model}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: text(request.SystemPrompt)})
	}

	for i, msg := range request.Messages {
		switch msg.Role {
		case ai.RoleUser:
			req.Messages = append(req.Messages, chatMessage{Role: "user", Content: text(msg.Content)})

		case ai.RoleAssistant:
			out := chatMessage{Role: "assistant"}
			if msg.Content != "" || len(msg.ToolCalls) == 0 {
				out.Content = text(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				tc := chatToolCall{ID: call.ID, Type: "function"}
				tc.Function.Name = call.Function.Name
				tc.Function.Arguments = call.Function.Arguments
				out.ToolCalls = append(out.ToolCalls, tc)
			}
			req.Messages = append(req.Messages, out)

		case ai.RoleTool:
			if msg.ToolCallID == "" {
				return chatCompletionRequest{}, fmt.Errorf("%w: tool message at index %d has no tool_call_id", ai.ErrAdapter, i)
			}
			result, _ := msg.ToolResult()
			content := result.Content
			if result.Failed() {
				content = result.ErrorJSON()
			}
			req.Messages = append(req.Messages, chatMessage{
				Role:       "tool",
				Content:    text(content),
				ToolCallID: msg.ToolCallID,
			})

		default:
			return chatCompletionRequest{}, fmt.Errorf("%w: unsupported role %q at index %d", ai.ErrAdapter, msg.Role, i)
		}
	}

	for _, tool := range request.Tools {
		req.Tools = append(req.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if len(req.Tools) > 0 && request.ToolChoice != "" {
		req.ToolChoice = string(request.ToolChoice)
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != 0 {
			req.Temperature = &cfg.Temperature
		}
		if cfg.TopP != 0 {
			req.TopP = &cfg.TopP
		}
		if cfg.MaxTokens > 0 {
			req.MaxCompletionTokens = &cfg.MaxTokens
		}
	}

	return req, nil
}

func text(s string) *string {
	return &s
}

// chatCompletionToGeneric maps the first choice. A reply without choices is an adapter error.
// request is the call that produced resp; it bounds the content fallback below.
func chatCompletionToGeneric(resp chatCompletionResponse, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: chat completion %q has no choices", ai.ErrAdapter, resp.ID)
	}
	choice := resp.Choices[0]

	out := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Content:      strings.TrimSpace(choice.Message.Content),
		Refusal:      choice.Message.Refusal,
		FinishReason: choice.FinishReason,
	}

	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:   withID(tc.ID),
			Type: "function",
			Function: ai.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	// Some OpenAI-compatible hosts put the calls in the content instead. Only
	// calls naming offered tools count, so a JSON answer stays an answer.
	if len(out.ToolCalls) == 0 && out.Content != "" && request.ToolChoice != ai.ToolChoiceNone {
		if parsed := parseToolCallsFromContent(out.Content); len(parsed) > 0 && allOffered(parsed, request.Tools) {
			out.ToolCalls = parsed
			out.Content = ""
			out.FinishReason = "tool_calls"
		}
	}

	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return out, nil
}

func allOffered(calls []ai.ToolCall, tools []ai.ToolDescription) bool {
	offered := make(map[string]bool, len(tools))
	for _, t := range tools {
		offered[t.Name] = true
	}
	for _, call := range calls {
		if !offered[call.Function.Name] {
			return false
		}
	}
	return true
}

func withID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}

// parseToolCallsFromContent recognises <TOOLCALL>[...]</TOOLCALL> blocks and
// content that is nothing but a JSON array of {"name", "arguments"} objects.
func parseToolCallsFromContent(content string) []ai.ToolCall {
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "<TOOLCALL>"); start != -1 {
		rest := content[start+len("<TOOLCALL>"):]
		if end := strings.Index(rest, "</TOOLCALL>"); end != -1 {
			return parseToolCallsJSON(rest[:end])
		}
		return nil
	}

	if strings.HasPrefix(content, "[") && strings.HasSuffix(content, "]") {
		return parseToolCallsJSON(content)
	}
	return nil
}

func parseToolCallsJSON(raw string) []ai.ToolCall {
	type contentCall struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	calls, err := parse.ParseStringAs[[]contentCall](raw)
	if err != nil {
		return nil
	}

	var toolCalls []ai.ToolCall
	for _, call := range calls {
		if call.Name == "" {
			return nil
		}
		args := "{}"
		if len(call.Arguments) > 0 {
			args = string(call.Arguments)
			// arguments may arrive as a JSON-encoded string
			var s string
			if json.Unmarshal(call.Arguments, &s) == nil {
				args = s
			}
		}
		toolCalls = append(toolCalls, ai.ToolCall{
			ID:   withID(""),
			Type: "function",
			Function: ai.ToolCallFunction{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}
	return toolCalls
}
