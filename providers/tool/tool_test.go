package tool

import (
	"context"
	"errors"
	"testing"
)

type echoInput struct {
	Text string `json:"text" description:"Text to echo"`
}

type lengthOutput struct {
	Length int `json:"length"`
}

func mustTool[I, O any](t *testing.T, name string, fn func(context.Context, I) (O, error), opts ...Option) *Tool[I, O] {
	t.Helper()
	tl, err := NewTool(name, fn, opts...)
	if err != nil {
		t.Fatalf("NewTool: %v", err)
	}
	return tl
}

func TestTool_CallStringOutputVerbatim(t *testing.T) {
	echo := mustTool(t, "echo", func(ctx context.Context, in echoInput) (string, error) {
		return "  " + in.Text + "  ", nil
	}, WithDescription("Echoes text"))

	out, err := echo.Call(context.Background(), `{"text":"hello"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "  hello  " {
		t.Errorf("got %q", out)
	}

	info := echo.ToolInfo()
	if info.Name != "echo" || info.Description != "Echoes text" || info.Parameters.Properties["text"].Description != "Text to echo" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestTool_CallStructOutputAsJSON(t *testing.T) {
	length := mustTool(t, "length", func(ctx context.Context, in echoInput) (lengthOutput, error) {
		return lengthOutput{Length: len(in.Text)}, nil
	})

	out, err := length.Call(context.Background(), `{"text":"abcd"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"length":4}` {
		t.Errorf("got %s", out)
	}
}

func TestTool_UnparsableArgumentsUseEmptyInput(t *testing.T) {
	var seen echoInput
	echo := mustTool(t, "echo", func(ctx context.Context, in echoInput) (string, error) {
		seen = in
		return "ran", nil
	})

	out, err := echo.Call(context.Background(), `[not json at all`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ran" || seen != (echoInput{}) {
		t.Errorf("expected tool to run with empty input, got out=%q seen=%+v", out, seen)
	}
}

func TestTool_FailureMessage(t *testing.T) {
	boom := errors.New("boom")
	fails := mustTool(t, "web_search", func(ctx context.Context, in echoInput) (string, error) {
		return "", boom
	}, WithFailurePrefix("Error while performing web search"))

	_, err := fails.Call(context.Background(), `{}`)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := fails.FailureMessage(err); got != "Error while performing web search: boom" {
		t.Errorf("got %q", got)
	}

	plain := mustTool(t, "plain", func(ctx context.Context, in echoInput) (string, error) { return "", nil })
	if got := plain.FailureMessage(boom); got != "boom" {
		t.Errorf("got %q", got)
	}
}

func TestCatalog(t *testing.T) {
	a := mustTool(t, "web_search", func(ctx context.Context, in echoInput) (string, error) { return "", nil })
	b := mustTool(t, "search_webpage", func(ctx context.Context, in echoInput) (string, error) { return "", nil })

	catalog, err := NewCatalog(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.Size() != 2 {
		t.Fatalf("size = %d", catalog.Size())
	}
	if got, ok := catalog.Get("web_search"); !ok || got != GenericTool(a) {
		t.Error("registered tool not found")
	}
	if _, ok := catalog.Get("Web_Search"); ok {
		t.Error("lookup must match the registered name exactly")
	}
	if _, ok := catalog.Get("translate"); ok {
		t.Error("unexpected tool found")
	}

	descs := catalog.Descriptions()
	if len(descs) != 2 || descs[0].Name != "web_search" || descs[1].Name != "search_webpage" {
		t.Errorf("descriptions not in registration order: %+v", descs)
	}

	if _, err := NewCatalog(a, a); err == nil {
		t.Error("expected duplicate error")
	}
}
