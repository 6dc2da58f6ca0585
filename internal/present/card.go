package present

import (
	"net/url"
	"strings"
	"time"

	"newsdesk/internal/model"
)

const (
	unknownAuthor   = "Unknown author"
	defaultCategory = "General"
	previewLength   = 160
)

// Card is an article prepared for listings and article pages.
type Card struct {
	ID        int64
	Title     string
	Summary   string
	ImageURL  string
	Author    string
	Category  string
	Published string
	Timestamp string
	ReadTime  int
}

// NewCard builds a Card. Relative image URLs are resolved against base
// when base is non-nil. A missing summary falls back to a preview of the
// body text.
func NewCard(a model.Article, base *url.URL, now time.Time) Card {
	card := Card{
		ID:        a.ID,
		Title:     a.Title,
		Summary:   a.Summary,
		ImageURL:  a.ImageURL,
		Author:    a.Author,
		Category:  a.Category,
		Published: Published(a.CreatedAt, now),
		Timestamp: a.CreatedAt.Format("02 Jan 2006, 15:04 MST"),
		ReadTime:  ReadTime(a.Body),
	}

	if card.Author == "" {
		card.Author = unknownAuthor
	}
	if card.Category == "" {
		card.Category = defaultCategory
	}
	if card.Summary == "" {
		card.Summary = Preview(a.Body, previewLength)
	}
	if base != nil && card.ImageURL != "" {
		if ref, err := url.Parse(card.ImageURL); err == nil {
			card.ImageURL = base.ResolveReference(ref).String()
		}
	}
	return card
}

// Preview returns at most n runes of the body's plain text, cut at a word
// boundary when possible.
func Preview(body string, n int) string {
	text := PlainText(body)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
