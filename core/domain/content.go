// ABOUTME: Content is the tagged variant feed item bodies are normalized into at ingestion
// ABOUTME: Replaces ad hoc shape sniffing downstream with one explicit plain-text operation

package domain

import "rssfilter-api/pkg/utils/html"

// ContentKind discriminates the shape of a Content value.
type ContentKind string

const (
	// ContentNone means the item carried no body at all.
	ContentNone ContentKind = ""

	// ContentText is plain text.
	ContentText ContentKind = "text"

	// ContentHTML is an HTML fragment.
	ContentHTML ContentKind = "html"
)

// Content holds a feed item body together with its shape. Source feeds
// deliver bodies as strings, HTML fragments, or lists of fragments; they
// are collapsed into this single variant at the ingestion boundary.
type Content struct {
	Kind  ContentKind `json:"kind"`
	Value string      `json:"value"`
}

// TextContent wraps plain text.
func TextContent(s string) Content {
	if s == "" {
		return Content{}
	}
	return Content{Kind: ContentText, Value: s}
}

// HTMLContent wraps an HTML fragment.
func HTMLContent(s string) Content {
	if s == "" {
		return Content{}
	}
	return Content{Kind: ContentHTML, Value: s}
}

// IsZero reports whether the content is empty.
func (c Content) IsZero() bool {
	return c.Kind == ContentNone || c.Value == ""
}

// PlainText extracts the text of the content, stripping markup for HTML.
func (c Content) PlainText() string {
	switch c.Kind {
	case ContentHTML:
		return html.Strip(c.Value)
	case ContentText:
		return c.Value
	default:
		return ""
	}
}
