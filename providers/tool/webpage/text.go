package webpage

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	leftoverTags = regexp.MustCompile(`<[^>]*>?`)
	// includes non-breaking and other Unicode spaces
	longSpace    = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]{6,}`)
	longNewlines = regexp.MustCompile(`(\r?\n){6,}`)
)

// Normalize removes leftover tags, collapses runs of six or more whitespace
// characters to two spaces, runs of six or more line breaks to two, and trims.
func Normalize(text string) string {
	text = leftoverTags.ReplaceAllString(text, "")
	text = longSpace.ReplaceAllString(text, "  ")
	text = longNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// BodyText returns the concatenated text of the document body with script
// and style elements removed.
func BodyText(document []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	body := findBody(root)
	if body == nil {
		return "", nil
	}

	var sb strings.Builder
	collectText(body, &sb)
	return sb.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
