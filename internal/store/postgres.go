package store

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const articleColumns = `id, title, summary, body, image_url, category, author, created_at`

// PostgresStore keeps articles in the news table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreFromPool wraps an existing pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanArticle(row pgx.Row) (*model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Body, &a.ImageURL, &a.Category, &a.Author, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, article *model.Article) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO news (title, summary, body, image_url, category, author, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, article.Title, article.Summary, article.Body, article.ImageURL, article.Category, article.Author, article.CreatedAt).
		Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*model.Article, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM news WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("select news %d: %w", id, err)
	}
	return a, err
}

func (s *PostgresStore) List(ctx context.Context, filter model.ListFilter) ([]model.Article, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM news
		WHERE ($1 = '' OR strpos(lower(title), lower($1)) > 0 OR strpos(lower(summary), lower($1)) > 0)
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC, id DESC
	`, filter.Query, filter.Category)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, article *model.Article) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE news
		SET title = $2, summary = $3, body = $4, image_url = $5, category = $6, author = $7
		WHERE id = $1
	`, article.ID, article.Title, article.Summary, article.Body, article.ImageURL, article.Category, article.Author)
	if err != nil {
		return fmt.Errorf("update news %d: %w", article.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM news WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *PostgresStore) ImageURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT image_url FROM news WHERE image_url <> ''`)
	if err != nil {
		return nil, fmt.Errorf("query image urls: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
