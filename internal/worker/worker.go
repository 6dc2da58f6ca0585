// Package worker runs the background jobs of the server: the URL import
// worker and the upload sweeper.
package worker

import (
	"context"
	"time"

	"newsdesk/internal/metrics"
	"newsdesk/internal/model"
	"newsdesk/internal/news"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

const scrapeTimeout = 30 * time.Second

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// Queue hands out import jobs and stores their outcome.
type Queue interface {
	Pop(ctx context.Context) (*model.ImportJob, error)
	Save(ctx context.Context, job *model.ImportJob) error
}

// Publisher creates articles.
type Publisher interface {
	Create(ctx context.Context, in model.Input, img *news.Image) (*model.Article, error)
}

// Worker turns queued URLs into articles.
type Worker struct {
	queue     Queue
	publisher Publisher
	logger    *zap.Logger
	scraper   Scraper
	now       func() time.Time
}

// NewWorker initializes the worker with the DefaultScraper
func NewWorker(queue Queue, publisher Publisher, logger *zap.Logger) *Worker {
	return &Worker{
		queue:     queue,
		publisher: publisher,
		logger:    logger,
		scraper:   &DefaultScraper{},
		now:       time.Now,
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Import worker started. Waiting for jobs...")

	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Import worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			select {
			case <-ctx.Done():
				w.logger.Info("Import worker shutting down")
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// A popped job runs to completion even if shutdown starts meanwhile.
		w.processJob(context.WithoutCancel(ctx), job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *model.ImportJob) {
	logger := w.logger.With(zap.String("job_id", job.ID.String()), zap.String("url", job.URL))
	logger.Info("Import started")

	page, err := w.scraper.Scrape(job.URL, scrapeTimeout)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		w.finish(ctx, logger, job, 0, err)
		return
	}

	author := job.Author
	if author == "" {
		author = page.Byline
	}
	article, err := w.publisher.Create(ctx, model.Input{
		Title:    page.Title,
		Summary:  page.Excerpt,
		Body:     page.Content,
		Category: job.Category,
		Author:   author,
	}, nil)
	if err != nil {
		logger.Error("Failed to publish imported article", zap.Error(err))
		w.finish(ctx, logger, job, 0, err)
		return
	}

	logger.Info("Import complete", zap.Int64("article_id", article.ID), zap.String("title", article.Title))
	w.finish(ctx, logger, job, article.ID, nil)
}

// finish records the job outcome.
func (w *Worker) finish(ctx context.Context, logger *zap.Logger, job *model.ImportJob, articleID int64, cause error) {
	now := w.now()
	job.FinishedAt = &now
	job.ArticleID = articleID
	job.Status = model.ImportDone
	if cause != nil {
		job.Status = model.ImportFailed
		job.Error = cause.Error()
	}
	metrics.ImportJobs.WithLabelValues(string(job.Status)).Inc()

	if err := w.queue.Save(ctx, job); err != nil {
		logger.Error("Failed to save job status", zap.Error(err))
	}
}
