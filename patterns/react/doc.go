// Package react implements the tool-calling answer loop. An [Agent] sends the
// conversation to the model, runs the tools it asks for, feeds the results back
// and repeats until the model answers in plain text or the round limit is hit.
//
// The returned text interleaves one trace line per tool round, for example
// "- [TOOL CALLS: Web Search (query: sports news)]", with whatever text the
// model produced along the way, so the user can see which tools were used.
package react
