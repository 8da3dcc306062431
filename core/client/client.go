package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

// Client sends chat requests through a fixed middleware chain. It holds no
// conversation state and may be shared by concurrent queries.
type Client struct {
	provider ai.Provider
	model    string
	observer observability.Provider
	send     SendFunc
}

type options struct {
	model       string
	observer    observability.Provider
	middlewares []Middleware
}

// Option configures a Client.
type Option func(*options)

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithObserver enables spans, metrics and logs for every model call. The
// observability middleware is placed outermost so it sees the final outcome
// after retries and timeouts.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithMiddleware appends middlewares to the chain, outermost first.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	middlewares := o.middlewares
	if o.observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(o.observer, provider.Name(), o.model)}, middlewares...)
	}
	for i, m := range middlewares {
		if m == nil {
			return nil, fmt.Errorf("client: middleware %d is nil", i)
		}
	}

	return &Client{
		provider: provider,
		model:    o.model,
		observer: o.observer,
		send:     buildSendChain(provider, middlewares),
	}, nil
}

// Send performs one model round. Errors wrap ai.ErrAdapter when the history or
// the reply could not be mapped, and ai.ErrUpstreamModel otherwise.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.model
	}

	response, err := c.send(ctx, request)
	if err != nil {
		if errors.Is(err, ai.ErrAdapter) || errors.Is(err, ai.ErrUpstreamModel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ai.ErrUpstreamModel, c.provider.Name(), err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: %s returned no response", ai.ErrAdapter, c.provider.Name())
	}
	return response, nil
}

func (c *Client) Provider() ai.Provider {
	return c.provider
}

func (c *Client) Model() string {
	return c.model
}

// Observer returns the configured observer, or nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}
