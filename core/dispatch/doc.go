// Package dispatch turns the tool calls requested by the model into tool
// results. Failures never escape as errors: an unknown tool or a failing tool
// yields an error-tagged [ai.ToolResult] the model can read and react to.
package dispatch
