package webpage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<html>
<head><title>Scores</title><style>body { color: red; }</style></head>
<body>
<h1>Match report</h1>
<script>var tracking = "should not appear";</script>
<p>The home side won 2-1.</p>
<!-- hidden comment -->
</body>
</html>`

func serve(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func htmlHandler(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}
}

func TestExtract_StripsScriptAndStyle(t *testing.T) {
	url := serve(t, htmlHandler(samplePage))

	text, err := New().Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Match report") || !strings.Contains(text, "The home side won 2-1.") {
		t.Errorf("body text missing: %q", text)
	}
	for _, unwanted := range []string{"tracking", "color: red", "hidden comment", "Scores"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("unexpected %q in %q", unwanted, text)
		}
	}
	if text != strings.TrimSpace(text) {
		t.Errorf("text not trimmed: %q", text)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	url := serve(t, htmlHandler(samplePage))
	extractor := New()

	first, err := extractor.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := extractor.Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if first != second {
		t.Errorf("extract not idempotent:\n%q\n%q", first, second)
	}
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := New().Extract(context.Background(), url)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if err.Error() != "Failed to fetch URL: Forbidden" {
		t.Errorf("got %q", err.Error())
	}
}

func TestExtract_Timeout(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	start := time.Now()
	_, err := New(WithTimeout(200*time.Millisecond)).Extract(context.Background(), url)
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %v", err)
	}
	if err.Error() != "Request timed out after 0.2 seconds" {
		t.Errorf("got %q", err.Error())
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestExtract_SlowBodyTimesOut(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, b := range []byte("<html><body>slow</body></html>") {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			_, _ = w.Write([]byte{b})
			flusher.Flush()
		}
	})

	_, err := New(WithTimeout(300*time.Millisecond)).Extract(context.Background(), url)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %v", err)
	}
}

func TestExtract_CallerCancellation(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, url)
	if err == nil {
		t.Fatal("expected error")
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Error("caller cancellation reported as timeout")
	}
}

func TestExtract_ShortContentAllowed(t *testing.T) {
	url := serve(t, htmlHandler(`<html><body>ok</body></html>`))

	text, err := New().Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("got %q", text)
	}
}

func TestExtract_Formats(t *testing.T) {
	url := serve(t, htmlHandler(`<html><body><article><h1>Title</h1><p>Some <strong>bold</strong> words in a paragraph.</p></article></body></html>`))

	markdown, err := New(WithFormat(FormatMarkdown)).Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if !strings.Contains(markdown, "# Title") || !strings.Contains(markdown, "**bold**") {
		t.Errorf("unexpected markdown: %q", markdown)
	}

	article, err := New(WithFormat(FormatReadability)).Extract(context.Background(), url)
	if err != nil {
		t.Fatalf("readability: %v", err)
	}
	if !strings.Contains(article, "bold") {
		t.Errorf("unexpected readability text: %q", article)
	}
}

func TestExtract_EmptyURL(t *testing.T) {
	if _, err := New().Extract(context.Background(), " "); err == nil {
		t.Error("expected error")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leftover tags", "a <b>bold</b> <br", "a bold"},
		{"long space run", "a" + strings.Repeat(" ", 8) + "b", "a  b"},
		{"short space run kept", "a     b", "a     b"},
		{"non-breaking spaces", "a" + strings.Repeat("\u00a0", 6) + "b", "a  b"},
		{"trim", "\n\t text \n", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "markdown": FormatMarkdown, "readability": FormatReadability} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewTool(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	pageTool, err := NewTool()
	if err != nil {
		t.Fatalf("NewTool: %v", err)
	}
	if info := pageTool.ToolInfo(); info.Name != Name || info.Parameters.Required[0] != "url" {
		t.Errorf("unexpected info: %+v", info)
	}

	_, err = pageTool.Call(context.Background(), `{"url":"`+url+`"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := pageTool.FailureMessage(err); got != "Error while searching the site: Failed to fetch URL: Forbidden" {
		t.Errorf("got %q", got)
	}
}
