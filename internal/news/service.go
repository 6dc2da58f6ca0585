// Package news implements the article service: validation, image handling
// and persistence of news articles.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"newsdesk/internal/metrics"
	"newsdesk/internal/model"
	"newsdesk/internal/store"
	"newsdesk/internal/upload"

	"go.uber.org/zap"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = store.ErrNotFound
)

// Uploader persists image files and removes them again.
type Uploader interface {
	Save(clientName string, r io.Reader) (url string, size int64, err error)
	Remove(url string) error
}

// Image is an optional file sent along with a create or update.
type Image struct {
	Filename string
	Reader   io.Reader
}

// ValidationError names the request field that was rejected. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Field %q %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks an input before it reaches storage. The body travels as
// "content" on the wire.
func Validate(in model.Input) error {
	if in.Body == "" {
		return &ValidationError{Field: "content", Reason: "is required and must be a string"}
	}
	return nil
}

type Service struct {
	store   store.Store
	uploads Uploader
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(st store.Store, uploads Uploader, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		uploads: uploads,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, filter model.ListFilter) ([]model.Article, error) {
	articles, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Article, error) {
	return s.store.Get(ctx, id)
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// Create stores the image (if any) and then the record. When the record
// cannot be committed the image is removed again.
func (s *Service) Create(ctx context.Context, in model.Input, img *Image) (_ *model.Article, err error) {
	defer func() { metrics.ObserveWrite("create", err) }()

	if err := Validate(in); err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(img)
	if err != nil {
		return nil, err
	}

	article := model.NewArticle(in, imageURL, s.now())
	if err := s.store.Create(ctx, &article); err != nil {
		s.discard(imageURL, "rollback")
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.logger.Info("Article created", zap.Int64("id", article.ID), zap.String("image", imageURL))
	return &article, nil
}

// Update overwrites the text fields and, when img is given, the image.
func (s *Service) Update(ctx context.Context, id int64, in model.Input, img *Image) (_ *model.Article, err error) {
	defer func() { metrics.ObserveWrite("update", err) }()

	if err := Validate(in); err != nil {
		return nil, err
	}

	article, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(img)
	if err != nil {
		return nil, err
	}

	previous := article.ImageURL
	article.Apply(in, imageURL)
	if err := s.store.Update(ctx, article); err != nil {
		s.discard(imageURL, "rollback")
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}

	if imageURL != "" && previous != "" && previous != imageURL {
		s.discard(previous, "replaced")
	}

	s.logger.Info("Article updated", zap.Int64("id", id), zap.Bool("image_replaced", imageURL != ""))
	return article, nil
}

// Delete removes the article's image and then the record. If the image
// cannot be removed the record is kept.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer func() { metrics.ObserveWrite("delete", err) }()

	article, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if article.ImageURL != "" {
		err := s.uploads.Remove(article.ImageURL)
		switch {
		case errors.Is(err, upload.ErrInvalidURL):
			s.logger.Warn("Article image is not a local upload, leaving it alone",
				zap.Int64("id", id), zap.String("image", article.ImageURL))
		case err != nil:
			return fmt.Errorf("remove image of article %d: %w", id, err)
		default:
			metrics.UploadsRemoved.WithLabelValues("delete").Inc()
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete article %d: %w", id, err)
	}

	s.logger.Info("Article deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) saveImage(img *Image) (string, error) {
	if img == nil || img.Reader == nil {
		return "", nil
	}
	url, size, err := s.uploads.Save(img.Filename, img.Reader)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	metrics.UploadBytes.Add(float64(size))
	return url, nil
}

// discard removes an image that no record references any more. Failures are
// only logged; the upload sweeper picks up what is left behind.
func (s *Service) discard(url, reason string) {
	if url == "" {
		return
	}
	if err := s.uploads.Remove(url); err != nil {
		s.logger.Warn("Failed to remove image", zap.String("image", url), zap.String("reason", reason), zap.Error(err))
		return
	}
	metrics.UploadsRemoved.WithLabelValues(reason).Inc()
}
