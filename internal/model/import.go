package model

import (
	"time"

	"github.com/google/uuid"
)

type ImportStatus string

const (
	ImportPending ImportStatus = "pending"
	ImportDone    ImportStatus = "done"
	ImportFailed  ImportStatus = "failed"
)

// ImportJob asks the worker to turn a web page into an article.
type ImportJob struct {
	ID         uuid.UUID    `json:"id"`
	URL        string       `json:"url"`
	Category   string       `json:"category,omitempty"`
	Author     string       `json:"author,omitempty"`
	Status     ImportStatus `json:"status"`
	ArticleID  int64        `json:"article_id,omitempty"`
	Error      string       `json:"error,omitempty"`
	QueuedAt   time.Time    `json:"queued_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

// NewImportJob creates a pending job for rawURL.
func NewImportJob(rawURL, category, author string) ImportJob {
	return ImportJob{
		ID:       uuid.New(),
		URL:      rawURL,
		Category: category,
		Author:   author,
		Status:   ImportPending,
		QueuedAt: time.Now(),
	}
}
