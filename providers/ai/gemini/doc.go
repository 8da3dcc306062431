// Package gemini adapts the shared ai message model to Gemini's
// generateContent API, the turn-accumulating shape.
//
// Gemini correlates function responses with function calls by position
// rather than by identifier: a model turn carrying N functionCall parts must
// be followed by one user turn carrying N functionResponse parts in the same
// order. The adapter builds that grouping from the flat history and fails with
// ai.ErrAdapter when the counts diverge. Calls returned without an id get a
// synthetic one so the rest of the agent can keep correlating by id.
package gemini
