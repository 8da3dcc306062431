package webpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-shiori/go-readability"
	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/tool"
)

const (
	// Name is the tool name advertised to the model.
	Name = "search_webpage"

	// DefaultTimeout bounds the whole fetch, body included.
	DefaultTimeout = 5 * time.Second

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "searchgpt-webpage/1.0"

	// MaxBodySize is the maximum response body read (10MB).
	MaxBodySize = 10 * 1024 * 1024

	failurePrefix = "Error while searching the site"
)

// Format selects how a fetched page is reduced to text.
type Format string

const (
	FormatText        Format = "text"
	FormatMarkdown    Format = "markdown"
	FormatReadability Format = "readability"
)

// ParseFormat maps a configuration value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, FormatReadability:
		return f, nil
	default:
		return "", fmt.Errorf("unknown extractor format %q", s)
	}
}

// StatusError reports a non-2xx reply from the target page.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return "Failed to fetch URL: " + e.StatusText
}

// TimeoutError reports that the fetch did not finish within the budget.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return "Request timed out after " + strconv.FormatFloat(e.After.Seconds(), 'f', -1, 64) + " seconds"
}

// Input is the argument object of a search_webpage call.
type Input struct {
	URL string `json:"url" description:"The URL of the site to search."`
}

// Extractor fetches pages and extracts their text.
type Extractor struct {
	timeout    time.Duration
	format     Format
	userAgent  string
	httpClient *http.Client
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

func WithFormat(format Format) Option {
	return func(e *Extractor) {
		if format != "" {
			e.format = format
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(e *Extractor) {
		if userAgent != "" {
			e.userAgent = userAgent
		}
	}
}

// WithHTTPClient sets the client used for fetching. Its own Timeout, if any,
// applies in addition to the extractor timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

func New(options ...Option) *Extractor {
	e := &Extractor{
		timeout:   DefaultTimeout,
		format:    FormatText,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Extract fetches rawURL and returns its normalised text. The request, body
// read included, is bound to the extractor timeout: once it expires the
// connection is torn down and a *TimeoutError is returned. A non-2xx reply
// yields a *StatusError. There is no minimum content length.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	pageURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := e.fetch(fetchCtx, pageURL)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &TimeoutError{After: e.timeout}
		}
		return "", err
	}

	text, err := e.render(body, pageURL)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body, pageURL.Redacted())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}
	return body, nil
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason != "" {
		return reason
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strconv.Itoa(resp.StatusCode)
}

func (e *Extractor) render(body []byte, pageURL *url.URL) (string, error) {
	switch e.format {
	case FormatMarkdown:
		markdown, err := htmltomarkdown.ConvertString(string(body))
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
		}
		return markdown, nil
	case FormatReadability:
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil || strings.TrimSpace(article.TextContent) == "" {
			return BodyText(body)
		}
		return article.TextContent, nil
	default:
		return BodyText(body)
	}
}

// Run is the tool entry point.
func (e *Extractor) Run(ctx context.Context, in Input) (string, error) {
	return e.Extract(ctx, in.URL)
}

// NewTool wraps an Extractor configured by options as the search_webpage tool.
func NewTool(options ...Option) (*tool.Tool[Input, string], error) {
	extractor := New(options...)
	return tool.NewTool(Name, extractor.Run,
		tool.WithDescription("Returns a string with all the content of a webpage. Some websites block this, so try a few different websites."),
		tool.WithFailurePrefix(failurePrefix),
	)
}
