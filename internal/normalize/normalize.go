package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxChars bounds text submitted to the language model. Prompts are
// billed per token, so oversized pages are cut before submission.
const DefaultMaxChars = 12000

// Text cleans raw HTML or caption text into plain prose. Markup is stripped,
// whitespace runs collapse to single spaces, and blank lines are reduced to
// at most one. Input without any markup passes through the same whitespace
// normalization.
func Text(input string) string {
	if !strings.ContainsRune(input, '<') {
		return normalizeWhitespace(input)
	}
	node, err := html.Parse(strings.NewReader(input))
	if err != nil || node == nil {
		return normalizeWhitespace(input)
	}
	var b strings.Builder
	collectText(&b, node)
	return normalizeWhitespace(b.String())
}

// Truncate caps s at max runes. Non-positive max means DefaultMaxChars.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxChars
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "iframe":
			return
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "div":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := strings.ReplaceAll(n.Data, "\t", " ")
		data = strings.ReplaceAll(data, "\r", " ")
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "div":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		}
	}
}

func normalizeWhitespace(s string) string {
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			if len(out) == 0 {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	// trim trailing blank line
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
