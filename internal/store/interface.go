package store

import (
	"context"
	"errors"

	"newsdesk/internal/model"
)

var (
	ErrNotFound = errors.New("article not found")
)

// Store persists articles. Implementations assign IDs on Create and replace
// whole records on Update, so concurrent writers resolve last-write-wins.
type Store interface {
	Create(ctx context.Context, article *model.Article) error
	Get(ctx context.Context, id int64) (*model.Article, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Article, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
	ImageURLs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}
