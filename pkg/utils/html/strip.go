// ABOUTME: HTML utilities for stripping tags from feed item bodies
// ABOUTME: Uses goquery so entity decoding and nesting are handled by a real parser

package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strip removes markup from an HTML fragment and returns its text content.
// Script and style bodies are dropped. Falls back to the input with tags
// removed naively if the fragment cannot be parsed.
func Strip(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fallbackStrip(fragment)
	}

	doc.Find("script, style").Remove()
	text := doc.Text()

	return collapseWhitespace(text)
}

// fallbackStrip is a last-resort tag removal for unparsable input.
func fallbackStrip(fragment string) string {
	var b strings.Builder
	inTag := false
	for _, r := range fragment {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return collapseWhitespace(b.String())
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
