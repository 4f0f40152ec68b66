// Package htmltext normalizes free text that upstream feeds deliver with embedded markup.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Clean strips HTML tags from the supplied string, decodes entities, collapses runs of
// whitespace into a single space and trims the result.
// Tags act as word separators so "<p>Gare</p><p>de Lyon</p>" becomes "Gare de Lyon".
func Clean(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var parts []string
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tokenType := tokenizer.Next()
		// Either we are at the end, or the string was malformed. Either way whatever text
		// was collected so far is returned.
		if tokenType == html.ErrorToken {
			break
		}

		if tokenType == html.TextToken {
			parts = append(parts, string(tokenizer.Text()))
		}
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
