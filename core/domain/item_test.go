package domain

import (
	"testing"
	"time"
)

func TestFeedItem_HasPublished(t *testing.T) {
	item := FeedItem{}
	if item.HasPublished() {
		t.Error("zero time should report no publish timestamp")
	}

	item.Published = time.Now()
	if !item.HasPublished() {
		t.Error("set time should report a publish timestamp")
	}
}

func TestFeedItem_IsValid(t *testing.T) {
	tests := []struct {
		name string
		item FeedItem
		want bool
	}{
		{"complete", FeedItem{ID: "1", Title: "t", Link: "l"}, true},
		{"title only", FeedItem{ID: "1", Title: "t"}, true},
		{"link only", FeedItem{ID: "1", Link: "l"}, true},
		{"no id", FeedItem{Title: "t", Link: "l"}, false},
		{"no title or link", FeedItem{ID: "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeedItem_Fingerprint(t *testing.T) {
	a := FeedItem{Title: "Title", Link: "https://example.com"}
	b := FeedItem{Title: "Title", Link: "https://example.com"}
	c := FeedItem{Title: "Other", Link: "https://example.com"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical (title, link) should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different titles should not share a fingerprint")
	}
	if len(a.Fingerprint()) != 32 {
		t.Errorf("fingerprint should be a 32-char hex digest, got %d chars", len(a.Fingerprint()))
	}
}

func TestContent_PlainText(t *testing.T) {
	if got := TextContent("plain").PlainText(); got != "plain" {
		t.Errorf("text content: got %q", got)
	}
	if got := HTMLContent("<p>rich <b>text</b></p>").PlainText(); got != "rich text" {
		t.Errorf("html content: got %q", got)
	}
	if got := (Content{}).PlainText(); got != "" {
		t.Errorf("empty content: got %q", got)
	}
}

func TestContent_Constructors(t *testing.T) {
	if !TextContent("").IsZero() {
		t.Error("empty text should produce zero content")
	}
	if !HTMLContent("").IsZero() {
		t.Error("empty html should produce zero content")
	}
	if TextContent("x").Kind != ContentText {
		t.Error("TextContent should tag as text")
	}
	if HTMLContent("x").Kind != ContentHTML {
		t.Error("HTMLContent should tag as html")
	}
}
