package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/ai"
	"github.com/leofalp/searchgpt/providers/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when the request leaves the model empty.
	DefaultModel = "gemini-1.5-flash"
)

// Provider implements ai.Provider for Google's Gemini API.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*Provider)(nil)

// New creates a provider from the environment:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: optional base URL override
func New() *Provider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements the ai.Provider interface.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.New("gemini: API key is not set")
	}

	model := request.Model
	if model == "" {
		model = DefaultModel
	}

	geminiReq, err := requestToGemini(request)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(model))
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, p.Name()),
			observability.String(observability.AttrLLMEndpoint, endpoint),
		)
	}

	_, resp, err := utils.DoPostSync[generateContentResponse](ctx, p.client, endpoint, "", geminiReq,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	result, err := geminiToGeneric(*resp)
	if err != nil {
		return nil, err
	}
	if result.Model == "" {
		result.Model = model
	}
	return result, nil
}
