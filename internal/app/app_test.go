package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/searchgpt/core/conversation"
	"github.com/leofalp/searchgpt/internal/config"
	"github.com/leofalp/searchgpt/providers/ai"
)

func testConfig(modelURL, searchURL string) *config.Config {
	return &config.Config{
		Provider: config.ProviderOpenAI,
		Model:    "gpt-test",
		OpenAI:   config.ProviderConfig{APIKey: "test-key", BaseURL: modelURL},
		Agent: config.AgentConfig{
			MaxRounds:    10,
			ToolChoice:   "auto",
			ModelTimeout: 5 * time.Second,
			RequestLog:   "minimal",
		},
		Search:    config.SearchConfig{Endpoint: searchURL, Limit: 5, Timeout: 5 * time.Second},
		Extractor: config.ExtractorConfig{Timeout: 5 * time.Second, Format: "text"},
		Log:       config.LogConfig{Level: "debug", Format: "json"},
	}
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("", "")
	cfg.OpenAI.APIKey = ""

	if _, err := Build(cfg, WithLogOutput(io.Discard)); err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestBuild_AnswersThroughOpenAIWire(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "sports news" {
			t.Errorf("search query = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"title":"Match report","snippet":"Home side wins","link":"https://example.com/match"}]`)
	}))
	defer search.Close()

	var mu sync.Mutex
	var bodies []map[string]any
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		bodies = append(bodies, body)
		n := len(bodies)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			fmt.Fprint(w, `{"id":"r1","model":"gpt-test","choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"web_search","arguments":"{\"query\":\"sports news\"}"}}]}}]}`)
			return
		}
		fmt.Fprint(w, `{"id":"r2","model":"gpt-test","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"The home side won."}}]}`)
	}))
	defer model.Close()

	var logs bytes.Buffer
	a, err := Build(testConfig(model.URL, search.URL), WithLogOutput(&logs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	conv := a.NewConversation()
	answer, err := a.Agent.Answer(context.Background(), conv, "Some news related to sports.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if want := "- [TOOL CALLS: Web Search (query: sports news)]\n\nThe home side won."; answer != want {
		t.Errorf("answer = %q, want %q", answer, want)
	}

	if len(bodies) != 2 {
		t.Fatalf("model calls = %d, want 2", len(bodies))
	}
	if bodies[0]["model"] != "gpt-test" {
		t.Errorf("model = %v", bodies[0]["model"])
	}
	if tools, _ := bodies[0]["tools"].([]any); len(tools) != 2 {
		t.Errorf("expected both tools advertised, got %d", len(tools))
	}

	// seed (2) + query + tool call turn + tool result + answer
	if conv.Len() != 6 {
		t.Errorf("conversation length = %d, want 6", conv.Len())
	}
	for _, want := range []string{`"msg":"agent ready"`, `"model":"gpt-test"`, `"max_rounds":10`} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("startup log missing %s", want)
		}
	}
	if !strings.Contains(logs.String(), "llm send completed") {
		t.Errorf("expected request logs, got %s", logs.String())
	}
}

func TestBuild_CustomProvider(t *testing.T) {
	provider := &fixedProvider{text: "hello"}
	a, err := Build(testConfig("", "http://127.0.0.1:1"), WithProvider(provider), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Client.Provider() != provider {
		t.Error("custom provider not used")
	}

	answer, err := a.Agent.Answer(context.Background(), a.NewConversation(), "hi")
	if err != nil || answer != "hello" {
		t.Fatalf("Answer = %q, %v", answer, err)
	}
	if provider.last.Model != "gpt-test" || provider.last.SystemPrompt != conversation.OpenAISystemPrompt {
		t.Errorf("unexpected request: model %q, prompt %q", provider.last.Model, provider.last.SystemPrompt)
	}
}

func TestNewConversation(t *testing.T) {
	a := &App{Config: &config.Config{Provider: config.ProviderGemini}}

	seeded := a.NewConversation()
	if seeded.Len() != 2 || seeded.SystemPrompt() != conversation.GeminiSystemPrompt {
		t.Errorf("default conversation: len %d, prompt %q", seeded.Len(), seeded.SystemPrompt())
	}

	custom := a.NewConversation(ai.NewUserMessage("earlier question"))
	if custom.Len() != 1 {
		t.Errorf("history not used: len %d", custom.Len())
	}
	if seeded.ID() == custom.ID() {
		t.Error("conversations share an id")
	}
}

type fixedProvider struct {
	text string
	last ai.ChatRequest
}

func (p *fixedProvider) Name() string { return "fixed" }

func (p *fixedProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	p.last = request
	return &ai.ChatResponse{Content: p.text, FinishReason: "stop"}, nil
}

func (p *fixedProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *fixedProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *fixedProvider) WithHttpClient(*http.Client) ai.Provider { return p }
