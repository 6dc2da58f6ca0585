package present

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain words", "plain words"},
		{"<p>Hello <b>world</b></p><p>again</p>", "Hello world again"},
		{"<p>a</p><script>var x = 1;</script><style>p{}</style><p>b</p>", "a b"},
		{"line<br/>break", "line break"},
		{"<p>unclosed <i>tag", "unclosed tag"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.in), tt.in)
	}
}

func TestReadTime(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	assert.Equal(t, 1, ReadTime(""))
	assert.Equal(t, 1, ReadTime(words(1)))
	assert.Equal(t, 1, ReadTime(words(200)))
	assert.Equal(t, 2, ReadTime(words(201)))
	assert.Equal(t, 3, ReadTime("<p>"+words(450)+"</p>"))
}

func TestPublished(t *testing.T) {
	now := time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "less than 1 hour ago"},
		{59 * time.Minute, "less than 1 hour ago"},
		{2 * time.Hour, "2 hours ago"},
		{23*time.Hour + 59*time.Minute, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{47 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{6*24*time.Hour + 23*time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "Jul 13, 2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Published(now.Add(-tt.ago), now), tt.ago.String())
	}
}

func TestNewCard_Defaults(t *testing.T) {
	now := time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)
	base, err := url.Parse("http://localhost:3001")
	require.NoError(t, err)

	card := NewCard(model.Article{
		ID:        7,
		Title:     "Title",
		Body:      "<p>Short body</p>",
		ImageURL:  "/uploads/abc.png",
		CreatedAt: now.Add(-3 * time.Hour),
	}, base, now)

	assert.Equal(t, int64(7), card.ID)
	assert.Equal(t, "Unknown author", card.Author)
	assert.Equal(t, "General", card.Category)
	assert.Equal(t, "Short body", card.Summary)
	assert.Equal(t, "http://localhost:3001/uploads/abc.png", card.ImageURL)
	assert.Equal(t, "3 hours ago", card.Published)
	assert.Equal(t, 1, card.ReadTime)
}

func TestNewCard_KeepsAbsoluteImageAndExplicitFields(t *testing.T) {
	now := time.Now()
	base, _ := url.Parse("http://localhost:3001")

	card := NewCard(model.Article{
		Summary:   "given",
		Author:    "Ana",
		Category:  "Tech",
		ImageURL:  "https://cdn.example.com/x.png",
		CreatedAt: now,
	}, base, now)

	assert.Equal(t, "given", card.Summary)
	assert.Equal(t, "Ana", card.Author)
	assert.Equal(t, "Tech", card.Category)
	assert.Equal(t, "https://cdn.example.com/x.png", card.ImageURL)

	noImage := NewCard(model.Article{CreatedAt: now}, base, now)
	assert.Equal(t, "", noImage.ImageURL)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("<b>short</b>", 10))
	assert.Equal(t, "one two…", Preview("one two three", 9))
}
