package rod

import (
	"strings"

	"golang.org/x/net/html"
)

const defaultMaxTextSize = 30_000

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
	"link":     true,
	"meta":     true,
	"head":     true,
	"title":    true,
}

// FlattenHTML strips markup down to whitespace-normalized visible text.
// On parse failure the raw input is returned truncated, a degraded prompt
// beats no prompt.
func FlattenHTML(raw string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = defaultMaxTextSize
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return truncate(strings.TrimSpace(raw), maxSize)
	}

	var sb strings.Builder
	collectText(doc, &sb)

	text := strings.Join(strings.Fields(sb.String()), " ")
	return truncate(text, maxSize)
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func truncate(s string, maxSize int) string {
	if len(s) > maxSize {
		return s[:maxSize]
	}
	return s
}
