// Package openai adapts the shared ai message model to the OpenAI Chat
// Completions wire format, the history-threaded shape: one flat list of
// system, user, assistant and tool messages where every tool message names
// the call it answers through tool_call_id.
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL from the environment;
// any OpenAI-compatible host can be targeted with [Provider.WithBaseURL].
package openai
