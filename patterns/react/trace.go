package react

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leofalp/searchgpt/core/parse"
	"github.com/leofalp/searchgpt/providers/ai"
)

// TraceLine renders one round of tool calls, e.g.
// "- [TOOL CALLS: Web Search (query: sports news), Search Webpage (url: https://a.example)]".
// Calls without a name are left out.
func TraceLine(calls []ai.ToolCall) string {
	parts := make([]string, 0, len(calls))
	for _, call := range calls {
		if s := formatCall(call); s != "" {
			parts = append(parts, s)
		}
	}
	return "- [TOOL CALLS: " + strings.Join(parts, ", ") + "]"
}

// formatCall shows the display name followed by the arguments in the order the
// model sent them. Arguments that cannot be decoded are omitted.
func formatCall(call ai.ToolCall) string {
	if call.Function.Name == "" {
		return ""
	}
	name := DisplayName(call.Function.Name)

	args, err := parse.OrderedArgs(call.Function.Arguments)
	if err != nil || len(args) == 0 {
		return name
	}

	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = arg.Key + ": " + arg.Value
	}
	return name + " (" + strings.Join(rendered, ", ") + ")"
}

// numericWord matches decimal numbers only; "inf" and "nan" are words.
var numericWord = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// DisplayName turns a tool name such as "web_search" into "Web Search".
// Numeric words are left as they are.
func DisplayName(name string) string {
	words := strings.Split(name, "_")
	for i, word := range words {
		if numericWord.MatchString(word) {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
