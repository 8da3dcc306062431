package ai

import (
	"context"
	"net/http"
)

// Provider is the core interface that every LLM provider implementation must
// satisfy. Each implementation owns the message adapter for its wire protocol:
// it maps the shared Message history onto the provider's request shape and maps
// the provider's reply back into a ChatResponse.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// SendMessage sends a chat request to the provider and returns the
	// completed response. Returns an error wrapping ErrAdapter when the
	// history cannot be expressed on the wire or the reply cannot be
	// interpreted, and a plain transport error otherwise.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
