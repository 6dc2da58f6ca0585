package model

import (
	"strings"
	"time"
)

// Article is a published news item.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"imageUrl"`
	Category  string    `json:"category,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input holds the writable fields of an article, as accepted by create and update.
type Input struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Author   string `json:"author"`
}

// NewArticle builds an unsaved article from input. The store assigns the ID.
func NewArticle(in Input, imageURL string, now time.Time) Article {
	return Article{
		Title:     in.Title,
		Summary:   in.Summary,
		Body:      in.Body,
		ImageURL:  imageURL,
		Category:  in.Category,
		Author:    in.Author,
		CreatedAt: now.UTC().Truncate(time.Microsecond),
	}
}

// Apply overwrites the writable fields. The image is replaced only when imageURL is non-empty.
func (a *Article) Apply(in Input, imageURL string) {
	a.Title = in.Title
	a.Summary = in.Summary
	a.Body = in.Body
	a.Category = in.Category
	a.Author = in.Author
	if imageURL != "" {
		a.ImageURL = imageURL
	}
}

// ListFilter narrows a listing. Zero value matches everything.
type ListFilter struct {
	Query    string
	Category string
}

// Match reports whether a satisfies the filter.
func (f ListFilter) Match(a Article) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Summary), q)
}
