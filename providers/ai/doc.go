// Package ai defines the shared, provider-agnostic types and interfaces used
// by every chat provider (OpenAI, Gemini). Each provider's conversion layer
// maps these types to its own wire format, keeping the orchestration loop
// decoupled from provider-specific details.
//
// The conversation history is a flat slice of [Message] values. An assistant
// message carrying N tool calls is always followed by exactly N tool messages,
// one per call and in call order; [ValidateToolTurns] enforces that shape
// before a history is sent on the wire.
package ai
