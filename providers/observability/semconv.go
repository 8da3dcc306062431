package observability

// --- LLM Provider Attributes ---

const (
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMEndpoint     = "llm.endpoint"
	AttrLLMResponseID   = "llm.response.id"
	AttrLLMFinishReason = "llm.finish_reason"
	AttrLLMToolChoice   = "llm.tool_choice"

	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- LLM tokens, not credentials
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- LLM tokens, not credentials
)

// --- Tool Execution Attributes ---

const (
	AttrToolName    = "tool.name"
	AttrToolCallID  = "tool.call_id"
	AttrToolInput   = "tool.input"
	AttrToolOutput  = "tool.output"
	AttrToolOutcome = "tool.outcome"
)

// --- Agent Attributes ---

const (
	AttrConversationID       = "conversation.id"
	AttrRequestMessagesCount = "request.messages_count"
	AttrRequestToolsCount    = "request.tools_count"
	AttrRound                = "agent.round"
	AttrToolCallsCount       = "agent.tool_calls"
	AttrAttempt              = "retry.attempt"
)

// --- Conversation Attributes ---

const (
	AttrMessageRole    = "conversation.message.role"
	AttrMessageLength  = "conversation.message.length"
	AttrMessagesTotal  = "conversation.messages.total"
	EventMessageAppend = "conversation.append"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	SpanAnswer        = "agent.answer"
	SpanLLMRequest    = "llm.request"
	SpanToolExecution = "tool.execution"
)

// --- Metric Names ---

const (
	// MetricToolDispatchTotal counts dispatched tool calls, labelled by tool and outcome.
	MetricToolDispatchTotal = "searchgpt_tool_dispatch_total"

	// MetricToolDispatchSeconds observes tool latency, labelled by tool.
	MetricToolDispatchSeconds = "searchgpt_tool_dispatch_seconds"

	// MetricModelRoundsTotal counts model calls made by the orchestration loop.
	MetricModelRoundsTotal = "searchgpt_model_rounds_total"
)

// Tool outcomes used as the outcome label of MetricToolDispatchTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

// ToolLabelUnknown replaces the tool name of not_found dispatches, whose names
// come from the model and are unbounded.
const ToolLabelUnknown = "unknown"
