package client

import (
	"time"

	"newsdesk/internal/model"
)

// DefaultFallback returns placeholder articles for front ends that prefer
// showing something over an error when the API is down.
func DefaultFallback() []model.Article {
	now := time.Now().UTC()
	return []model.Article{
		{
			ID:        1,
			Title:     "Hackathons as a path",
			Summary:   "How solutions built during hackathons can shape your reality.",
			Body:      "<p>Hackathons turn a weekend of prototyping into products, careers and communities.</p>",
			Category:  "Technology",
			Author:    "Newsdesk",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        2,
			Title:     "Economy shows signs of recovery",
			Summary:   "Economic indicators point to sustained growth in the third quarter.",
			Body:      "<p>Analysts expect the recovery to continue through the end of the year.</p>",
			Category:  "Economy",
			Author:    "Newsdesk",
			CreatedAt: now.Add(-4 * time.Hour),
		},
	}
}
