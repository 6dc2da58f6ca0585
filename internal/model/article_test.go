package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArticle_Apply_KeepsImageWithoutReplacement(t *testing.T) {
	a := NewArticle(Input{Title: "A", Summary: "B", Body: "C"}, "/uploads/old.png", time.Now())

	a.Apply(Input{Title: "A2", Summary: "B2", Body: "C2", Category: "Tech"}, "")
	assert.Equal(t, "/uploads/old.png", a.ImageURL)
	assert.Equal(t, "A2", a.Title)
	assert.Equal(t, "Tech", a.Category)

	a.Apply(Input{Body: "C3"}, "/uploads/new.png")
	assert.Equal(t, "/uploads/new.png", a.ImageURL)
	assert.Empty(t, a.Title, "title is reset on every update")
}

func TestNewArticle_TruncatesCreatedAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	a := NewArticle(Input{Body: "x"}, "", now)

	assert.Equal(t, time.UTC, a.CreatedAt.Location())
	assert.Equal(t, 123456000, a.CreatedAt.Nanosecond())
}

func TestListFilter_Match(t *testing.T) {
	a := Article{Title: "Go Release Notes", Summary: "What's new", Category: "Tech"}

	tests := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{"empty filter", ListFilter{}, true},
		{"title case-insensitive", ListFilter{Query: "release"}, true},
		{"summary", ListFilter{Query: "NEW"}, true},
		{"no match", ListFilter{Query: "economy"}, false},
		{"category", ListFilter{Category: "Tech"}, true},
		{"other category", ListFilter{Category: "Sports"}, false},
		{"both", ListFilter{Query: "go", Category: "Tech"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(a))
		})
	}
}
