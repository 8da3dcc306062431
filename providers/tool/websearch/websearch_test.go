package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(WithEndpoint(server.URL + "/search"))
}

func TestSearch_SendsQueryAndLimit(t *testing.T) {
	var gotQuery, gotLimit, gotPath string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[{"title":"A","snippet":"first","link":"https://a.example"}]`)
	})

	set, err := client.Search(context.Background(), "sports news & scores")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/search" || gotQuery != "sports news & scores" || gotLimit != "5" {
		t.Errorf("unexpected request: path=%q query=%q limit=%q", gotPath, gotQuery, gotLimit)
	}
	if len(set.Results) != 1 || set.Results[0] != (Result{Title: "A", Snippet: "first", URL: "https://a.example"}) {
		t.Errorf("unexpected results: %+v", set.Results)
	}
	if set.Note != Note {
		t.Errorf("missing note")
	}
}

func TestSearch_TruncatesToFive(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var entries []string
		for i := 1; i <= 8; i++ {
			entries = append(entries, fmt.Sprintf(`{"title":"T%d","snippet":"s","link":"https://%d.example"}`, i, i))
		}
		fmt.Fprint(w, "["+strings.Join(entries, ",")+"]")
	})

	set, err := client.Search(context.Background(), "many")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Results) != MaxResults {
		t.Fatalf("got %d results, want %d", len(set.Results), MaxResults)
	}
	for i, r := range set.Results {
		if r.Title != fmt.Sprintf("T%d", i+1) {
			t.Errorf("result %d out of rank order: %s", i, r.Title)
		}
	}
}

func TestSearch_AlternateKeys(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"B","result":"second","url":"https://b.example"}]`)
	})

	set, err := client.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Results[0].Snippet != "second" || set.Results[0].URL != "https://b.example" {
		t.Errorf("alternate keys not mapped: %+v", set.Results[0])
	}
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"not an array", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"results":[]}`) }},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `<html>`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newBackend(t, tt.handler)
			set, err := client.Search(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), "Failed to perform the search request") {
				t.Errorf("unexpected message: %v", err)
			}
			if len(set.Results) != 0 {
				t.Errorf("partial results returned: %+v", set.Results)
			}
		})
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	if _, err := New().Search(context.Background(), "   "); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestResultSet_KeyOrder(t *testing.T) {
	set := ResultSet{Note: Note, Results: []Result{
		{Title: "one", Snippet: "s1", URL: "u1"},
		{Title: "two", Snippet: "s2", URL: "u2"},
	}}

	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Note":"` + Note + `","result_1":{"title":"one","result":"s1","url":"u1"},"result_2":{"title":"two","result":"s2","url":"u2"}}`
	if string(raw) != want {
		t.Errorf("got  %s\nwant %s", raw, want)
	}

	rendered := set.String()
	if !strings.HasPrefix(rendered, "{\n  \"Note\": ") {
		t.Errorf("expected indented output, got %q", rendered)
	}
	if strings.Index(rendered, "result_1") > strings.Index(rendered, "result_2") {
		t.Error("rank order lost in rendering")
	}
}

func TestNewTool(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"A","snippet":"first","link":"https://a.example"}]`)
	})

	searchTool, err := NewTool(WithEndpoint(client.endpoint))
	if err != nil {
		t.Fatalf("NewTool: %v", err)
	}
	info := searchTool.ToolInfo()
	if info.Name != Name || info.Parameters == nil || info.Parameters.Required[0] != "query" {
		t.Errorf("unexpected tool info: %+v", info)
	}

	out, err := searchTool.Call(context.Background(), `{"query":"sports news"}`)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(out, `"result_1"`) || !strings.Contains(out, "https://a.example") {
		t.Errorf("unexpected output: %s", out)
	}

	if got := searchTool.FailureMessage(fmt.Errorf("boom")); got != "Error while performing web search: boom" {
		t.Errorf("got %q", got)
	}
}
