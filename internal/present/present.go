// Package present derives display values from stored articles: read time,
// relative publication time and plain text previews.
package present

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const wordsPerMinute = 200

// PlainText returns the text content of an HTML fragment with runs of
// whitespace collapsed to single spaces.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF at the end of input; anything else is malformed
			// markup, in which case the text seen so far is kept.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if isHidden(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

// ReadTime estimates minutes needed to read body at 200 words per minute.
// Anything shorter than a minute still counts as one.
func ReadTime(body string) int {
	words := len(strings.Fields(PlainText(body)))
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}

// Published describes t relative to now in coarse buckets. Anything older
// than a week is shown as a calendar date.
func Published(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	switch {
	case hours < 1:
		return "less than 1 hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := hours / 24
	switch {
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("Jan 02, 2006")
}
