package util

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxFieldLength caps sanitized narrative fields
const DefaultMaxFieldLength = 2000

// Sanitize normalizes reporter-supplied text: strips pasted markup, collapses
// whitespace, and truncates to maxLength with a "..." marker. A maxLength of
// zero or less applies the default cap.
func Sanitize(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxFieldLength
	}

	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = StripMarkup(text)
	}

	text = strings.Join(strings.Fields(text), " ")

	if len(text) > maxLength {
		text = text[:maxLength-3] + "..."
	}

	return text
}

// StripMarkup extracts the visible text from HTML-looking input, skipping
// script/style content. Unparsable input is returned as-is; html.Parse is
// lenient, so this is a safety net rather than an expected path.
func StripMarkup(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String())
}
