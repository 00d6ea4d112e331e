package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// stripHTML reduces markup to plain text and collapses runs of whitespace.
// Feed summaries are frequently HTML fragments; only the text matters for
// keyword matching and display.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
