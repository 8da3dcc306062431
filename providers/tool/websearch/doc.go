// Package websearch implements the web_search tool: a thin client for a
// JSON search backend that returns a small ranked list of results.
package websearch
