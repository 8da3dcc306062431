// Package server exposes the answer agent over HTTP.
//
//	POST /v1/answer  {"query": "...", "history": [...]}
//	GET  /healthz
//	GET  /metrics
//
// The server keeps no sessions: each request builds its own conversation from
// the history it carries and gets the extended history back.
package server
