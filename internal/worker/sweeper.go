package worker

import (
	"context"
	"time"

	"newsdesk/internal/metrics"
	"newsdesk/internal/upload"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ImageLister reports the image URLs referenced by stored articles.
type ImageLister interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// Sweeper removes upload files that no article references. Files younger
// than the grace period are kept so writes still in flight are not raced.
type Sweeper struct {
	uploads *upload.Storage
	images  ImageLister
	grace   time.Duration
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

func NewSweeper(uploads *upload.Storage, images ImageLister, grace time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		uploads: uploads,
		images:  images,
		grace:   grace,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules Sweep according to a cron spec such as "@every 1h" and
// returns once scheduled. The schedule stops when ctx is done.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("Upload sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Upload sweeper scheduled", zap.String("schedule", schedule), zap.Duration("grace", s.grace))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

// Sweep removes orphaned uploads once and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	// Files are listed before references are read. Anything written in
	// between is younger than the grace period.
	files, err := s.uploads.Files()
	if err != nil {
		return 0, err
	}
	urls, err := s.images.ImageURLs(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[u] = true
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, f := range files {
		url := upload.URL(f.Name)
		if referenced[url] || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.uploads.Remove(url); err != nil {
			s.logger.Warn("Failed to remove orphaned upload", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		metrics.UploadsRemoved.WithLabelValues("orphan").Inc()
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed orphaned uploads", zap.Int("count", removed))
	}
	return removed, nil
}
