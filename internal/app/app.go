package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/leofalp/searchgpt/core/client"
	"github.com/leofalp/searchgpt/core/client/middleware"
	"github.com/leofalp/searchgpt/core/conversation"
	"github.com/leofalp/searchgpt/core/dispatch"
	"github.com/leofalp/searchgpt/internal/config"
	"github.com/leofalp/searchgpt/patterns/react"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/ai/gemini"
	"github.com/leofalp/searchgpt/providers/ai/openai"
	"github.com/leofalp/searchgpt/providers/observability/promobs"
	"github.com/leofalp/searchgpt/providers/observability/slogobs"
	"github.com/leofalp/searchgpt/providers/tool"
	"github.com/leofalp/searchgpt/providers/tool/webpage"
	"github.com/leofalp/searchgpt/providers/tool/websearch"
)

// App is the wired agent and the pieces callers need around it.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Observer *promobs.Observer
	Client   *client.Client
	Agent    *react.Agent
}

type options struct {
	logOutput  io.Writer
	httpClient *http.Client
	provider   ai.Provider
}

type Option func(*options)

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithHTTPClient is used by the model provider and both tools.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithProvider replaces the provider named by the configuration.
func WithProvider(p ai.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// Build validates cfg and wires the agent.
func Build(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	base := slogobs.New(
		slogobs.WithFormat(slogobs.ParseFormat(cfg.Log.Format)),
		slogobs.WithLevel(slogobs.ParseLogLevel(cfg.Log.Level)),
		slogobs.WithOutput(o.logOutput),
	)
	observer := promobs.New(base)

	provider := o.provider
	if provider == nil {
		provider = newProvider(cfg)
		if o.httpClient != nil {
			provider = provider.WithHttpClient(o.httpClient)
		}
	}

	retries := cfg.Agent.Retries
	if retries == 0 {
		retries = -1
	}
	modelClient, err := client.New(provider,
		client.WithModel(cfg.Model),
		client.WithObserver(observer),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(base.Logger(), middleware.ParseLogLevel(cfg.Agent.RequestLog)),
			middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: retries}),
			middleware.NewTimeoutMiddleware(cfg.Agent.ModelTimeout),
		),
	)
	if err != nil {
		return nil, err
	}

	catalog, err := newCatalog(cfg, o.httpClient)
	if err != nil {
		return nil, err
	}

	agentOpts := []react.Option{
		react.WithMaxRounds(cfg.Agent.MaxRounds),
		react.WithToolChoice(ai.ParseToolChoice(cfg.Agent.ToolChoice)),
		react.WithObserver(observer),
	}
	if cfg.Agent.Temperature != 0 || cfg.Agent.MaxTokens != 0 {
		agentOpts = append(agentOpts, react.WithGenerationConfig(&ai.GenerationConfig{
			Temperature: cfg.Agent.Temperature,
			MaxTokens:   cfg.Agent.MaxTokens,
		}))
	}
	agent, err := react.New(modelClient, dispatch.New(catalog, dispatch.WithObserver(observer)), agentOpts...)
	if err != nil {
		return nil, err
	}

	model := modelClient.Model()
	if model == "" {
		model = "provider default"
	}
	base.Logger().Info("agent ready",
		slog.String("provider", modelClient.Provider().Name()),
		slog.String("model", model),
		slog.Int("max_rounds", agent.MaxRounds()),
	)

	return &App{
		Config:   cfg,
		Logger:   base.Logger(),
		Observer: observer,
		Client:   modelClient,
		Agent:    agent,
	}, nil
}

// NewConversation starts a conversation with the provider's system prompt.
// An empty history is replaced by the default greeting exchange.
func (a *App) NewConversation(history ...ai.Message) *conversation.Conversation {
	if len(history) == 0 {
		history = conversation.DefaultSeed()
	}
	return conversation.New(conversation.SystemPromptFor(a.Config.Provider), history...)
}

func newProvider(cfg *config.Config) ai.Provider {
	settings := cfg.ProviderSettings()

	var p ai.Provider
	switch cfg.Provider {
	case config.ProviderGemini:
		p = gemini.New()
	default:
		p = openai.New()
	}
	return p.WithAPIKey(settings.APIKey).WithBaseURL(settings.BaseURL)
}

func newCatalog(cfg *config.Config, httpClient *http.Client) (*tool.Catalog, error) {
	searchOpts := []websearch.Option{
		websearch.WithEndpoint(cfg.Search.Endpoint),
		websearch.WithLimit(cfg.Search.Limit),
	}
	format, err := webpage.ParseFormat(cfg.Extractor.Format)
	if err != nil {
		return nil, err
	}
	pageOpts := []webpage.Option{
		webpage.WithTimeout(cfg.Extractor.Timeout),
		webpage.WithFormat(format),
		webpage.WithUserAgent(cfg.Extractor.UserAgent),
	}

	if httpClient != nil {
		searchOpts = append(searchOpts, websearch.WithHTTPClient(httpClient))
		pageOpts = append(pageOpts, webpage.WithHTTPClient(httpClient))
	} else if cfg.Search.Timeout > 0 {
		searchOpts = append(searchOpts, websearch.WithHTTPClient(&http.Client{Timeout: cfg.Search.Timeout}))
	}

	search, err := websearch.NewTool(searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("web search tool: %w", err)
	}
	page, err := webpage.NewTool(pageOpts...)
	if err != nil {
		return nil, fmt.Errorf("webpage tool: %w", err)
	}
	return tool.NewCatalog(search, page)
}
