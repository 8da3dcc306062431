package ai

import (
	"encoding/json"

	"github.com/leofalp/searchgpt/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Contains all messages in the conversation except system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	Tools            []ToolDescription `json:"tools,omitempty"`             // Contains tool definitions if any
	ToolChoice       ToolChoice        `json:"tool_choice,omitempty"`       // Tool-calling mode, empty means auto
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// ToolDescription advertises a callable tool to the model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// ToolChoice is the tool-calling mode sent along with the tool schemas.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"     // model decides
	ToolChoiceRequired ToolChoice = "required" // model must call at least one tool
	ToolChoiceNone     ToolChoice = "none"     // model must answer in text
)

// ParseToolChoice maps a configuration string to a ToolChoice, defaulting to auto.
func ParseToolChoice(s string) ToolChoice {
	switch ToolChoice(s) {
	case ToolChoiceRequired, ToolChoiceNone:
		return ToolChoice(s)
	case "any":
		return ToolChoiceRequired
	default:
		return ToolChoiceAuto
	}
}

// Message represents a single message in a conversation.
//
// It is a tagged union over the role: user messages carry Content, assistant
// messages carry Content and/or ToolCalls, tool messages carry exactly one
// tool result (Content, ToolCallID, Name, IsError).
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being responded to
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that generated this response
	IsError    bool       `json:"is_error,omitempty"`     // For role=tool, Content holds an error payload
}

// NewUserMessage builds a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant message, optionally carrying tool calls.
func NewAssistantMessage(content string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolResultMessage builds the tool message answering result.CallID.
func NewToolResultMessage(result ToolResult) Message {
	msg := Message{
		Role:       RoleTool,
		ToolCallID: result.CallID,
		Name:       result.Name,
		Content:    result.Content,
	}
	if result.Failed() {
		msg.Content = result.Error
		msg.IsError = true
	}
	return msg
}

// ToolResult returns the tool result carried by a tool message.
// The second return value is false for messages of any other role.
func (m Message) ToolResult() (ToolResult, bool) {
	if m.Role != RoleTool {
		return ToolResult{}, false
	}
	result := ToolResult{CallID: m.ToolCallID, Name: m.Name}
	if m.IsError {
		result.Error = m.Content
	} else {
		result.Content = m.Content
	}
	return result, true
}

type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`  // Optional max tokens for the response
	Temperature float32 `json:"temperature,omitempty"` // Sampling temperature [0..2]
	TopP        float32 `json:"top_p,omitempty"`       // Nucleus (top-p) sampling [0..1]
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string     `json:"id"`
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`

	Refusal string `json:"refusal,omitempty"` // If model refuses to respond (safety/policy)
}

// HasToolCalls reports whether the model asked for at least one tool invocation.
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Text returns the answer text, falling back to the refusal when the content is empty.
func (r *ChatResponse) Text() string {
	if r == nil {
		return ""
	}
	if r.Content == "" {
		return r.Refusal
	}
	return r.Content
}

/*
	##### TOOL CALLS #####
*/

// ToolCall represents a function/tool call request from the LLM
type ToolCall struct {
	ID       string           `json:"id,omitempty"` // Unique identifier for this tool call
	Type     string           `json:"type"`         // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolResult is the outcome of one tool invocation. Exactly one of Content and
// Error is meaningful: a non-empty Error marks a failure.
type ToolResult struct {
	CallID  string `json:"call_id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewToolResultSuccess creates a successful tool result for call.
func NewToolResultSuccess(call ToolCall, content string) ToolResult {
	return ToolResult{
		CallID:  call.ID,
		Name:    call.Function.Name,
		Content: content,
	}
}

// NewToolResultError creates a failed tool result for call carrying message as payload.
func NewToolResultError(call ToolCall, message string) ToolResult {
	return ToolResult{
		CallID: call.ID,
		Name:   call.Function.Name,
		Error:  message,
	}
}

// Failed reports whether the result carries an error payload.
func (tr ToolResult) Failed() bool {
	return tr.Error != ""
}

// ErrorJSON renders the error payload as {"error": "..."}.
func (tr ToolResult) ErrorJSON() string {
	encoded, err := json.Marshal(map[string]string{"error": tr.Error})
	if err != nil {
		return tr.Error
	}
	return string(encoded)
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Middle llm response
	RoleTool      MessageRole = "tool"      // Tool/function output
)
