package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// chatServer answers every Chat Completions call with "answer N" and records
// the number of messages it received.
type chatServer struct {
	mu       sync.Mutex
	lengths  []int
	lastUser string
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.lengths = append(s.lengths, len(body.Messages))
	n := len(s.lengths)
	if len(body.Messages) > 0 {
		s.lastUser = body.Messages[len(body.Messages)-1].Content
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"r%d","model":"gpt-test","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"answer %d"}}]}`, n, n)
}

func setup(t *testing.T) (*chatServer, string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("O_API_KEY", "")

	model := &chatServer{}
	srv := httptest.NewServer(model)
	t.Cleanup(srv.Close)

	path := filepath.Join(dir, "searchgpt.yaml")
	content := fmt.Sprintf("provider: openai\nopenai:\n  api_key: test-key\n  base_url: %s\nlog:\n  level: error\n", srv.URL)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return model, path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	model, path := setup(t)

	out, err := run(t, "", "ask", "--config", path, "who", "won?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "answer 1" {
		t.Errorf("output = %q", out)
	}
	if model.lastUser != "who won?" {
		t.Errorf("query sent = %q", model.lastUser)
	}
}

func TestAsk_DefaultQuery(t *testing.T) {
	model, path := setup(t)

	if _, err := run(t, "", "ask", "-c", path); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if model.lastUser != defaultQuery {
		t.Errorf("query sent = %q, want %q", model.lastUser, defaultQuery)
	}
}

func TestAsk_MissingKey(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("O_API_KEY", "")
	t.Setenv("SEARCHGPT_OPENAI_API_KEY", "")

	_, err := run(t, "", "ask", "hello")
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestChat_KeepsHistoryAcrossTurns(t *testing.T) {
	model, path := setup(t)

	out, err := run(t, "first question\n\nsecond question\nexit\n", "chat", "--config", path)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(out, "answer 1") || !strings.Contains(out, "answer 2") {
		t.Errorf("output = %q", out)
	}

	// system + seed (2) + query, then the same plus answer and the next query
	if len(model.lengths) != 2 || model.lengths[0] != 4 || model.lengths[1] != 6 {
		t.Errorf("message counts sent = %v, want [4 6]", model.lengths)
	}
}
