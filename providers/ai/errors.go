package ai

import "errors"

var (
	// ErrToolLookup marks a tool call whose name is not registered.
	ErrToolLookup = errors.New("tool lookup failed")

	// ErrToolExecution marks a registered tool that failed while running
	// (network, timeout, non-2xx status, bad input).
	ErrToolExecution = errors.New("tool execution failed")

	// ErrAdapter marks a history or provider reply that cannot be mapped
	// between the shared message model and a wire format.
	ErrAdapter = errors.New("message adapter error")

	// ErrUpstreamModel marks a failed inference call.
	ErrUpstreamModel = errors.New("upstream model error")
)
