package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/searchgpt/internal/utils"
	"github.com/leofalp/searchgpt/providers/tool"
)

const (
	// Name is the tool name advertised to the model.
	Name = "web_search"

	// DefaultEndpoint is the search backend queried when no endpoint is configured.
	DefaultEndpoint = "https://search.neuranet-ai.com/search"

	// MaxResults caps the result set regardless of what the backend returns.
	MaxResults = 5

	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 15 * time.Second

	// Note heads every result set and points the model at the page extractor.
	Note = "These are only the search results overview. Please use the Scrape Webpage tool to search further into the links."

	failurePrefix = "Error while performing web search"
)

// Input is the argument object of a web_search call.
type Input struct {
	Query string `json:"query" description:"The query to search for."`
}

// Result is one ranked search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"result"`
	URL     string `json:"url"`
}

// ResultSet is the ordered, rank-significant output of a search.
type ResultSet struct {
	Note    string
	Results []Result
}

// MarshalJSON encodes the set as one object: "Note" first, then
// "result_1" … "result_n" in rank order.
func (s ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	note, err := json.Marshal(s.Note)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"Note":`)
	buf.Write(note)

	for i, r := range s.Results {
		entry, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"result_` + strconv.Itoa(i+1) + `":`)
		buf.Write(entry)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the set as two-space indented JSON, the form handed to the model.
func (s ResultSet) String() string {
	raw, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

// record is one entry of the backend reply. Backends disagree on key names,
// so both spellings are accepted.
type record struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Result  string `json:"result"`
	Link    string `json:"link"`
	URL     string `json:"url"`
}

func (r record) toResult() Result {
	out := Result{Title: r.Title, Snippet: r.Snippet, URL: r.Link}
	if out.Snippet == "" {
		out.Snippet = r.Result
	}
	if out.URL == "" {
		out.URL = r.URL
	}
	return out
}

// Client queries the search backend.
type Client struct {
	endpoint   string
	limit      int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint. Empty values are ignored.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLimit sets the number of requested results, clamped to [1, MaxResults].
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 && limit <= MaxResults {
			c.limit = limit
		}
	}
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New returns a Client for DefaultEndpoint with a MaxResults limit.
func New(options ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		limit:      MaxResults,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Search sends query to the backend and returns at most the configured number
// of results, in backend rank order. Any transport, status or decoding
// failure is returned as an error; partial results are never returned.
func (c *Client) Search(ctx context.Context, query string) (ResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ResultSet{}, fmt.Errorf("query cannot be empty")
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return ResultSet{}, fmt.Errorf("invalid search endpoint: %w", err)
	}
	params := endpoint.Query()
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(c.limit))
	endpoint.RawQuery = params.Encode()

	_, records, err := utils.DoGetSync[[]record](ctx, c.httpClient, endpoint.String())
	if err != nil {
		return ResultSet{}, fmt.Errorf("Failed to perform the search request: %w", err)
	}

	entries := *records
	if len(entries) > c.limit {
		entries = entries[:c.limit]
	}

	set := ResultSet{Note: Note, Results: make([]Result, 0, len(entries))}
	for _, r := range entries {
		set.Results = append(set.Results, r.toResult())
	}
	return set, nil
}

// Run is the tool entry point: it searches and renders the set for the model.
func (c *Client) Run(ctx context.Context, in Input) (string, error) {
	set, err := c.Search(ctx, in.Query)
	if err != nil {
		return "", err
	}
	return set.String(), nil
}

// NewTool wraps a Client configured by options as the web_search tool.
func NewTool(options ...Option) (*tool.Tool[Input, string], error) {
	client := New(options...)
	return tool.NewTool(Name, client.Run,
		tool.WithDescription("Search the internet to find up-to-date information on a given topic."),
		tool.WithFailurePrefix(failurePrefix),
	)
}
