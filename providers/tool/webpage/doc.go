// Package webpage implements the search_webpage tool: it fetches a page
// within a fixed time budget and reduces it to plain text.
//
// Three output formats exist. [FormatText] collects the visible body text with
// script and style removed. [FormatMarkdown] converts the page with
// html-to-markdown. [FormatReadability] keeps only the main article. All
// formats go through [Normalize] and share the same failure messages.
package webpage
