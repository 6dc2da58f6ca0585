// Package client talks to the newsdesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/model"
)

// Client is a client for the newsdesk API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fallback   []model.Article
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFallback makes List return articles instead of an error when the
// request fails.
func WithFallback(articles []model.Article) Option {
	return func(c *Client) { c.fallback = articles }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("newsdesk api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("newsdesk api: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Image is a file sent with Create or Update.
type Image struct {
	Filename string
	Reader   io.Reader
}

// List returns articles, newest first. With a fallback configured, a failed
// request yields the fallback articles and no error.
func (c *Client) List(ctx context.Context, filter model.ListFilter) ([]model.Article, error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	path := "/news"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var articles []model.Article
	if err := c.do(ctx, http.MethodGet, path, nil, "", &articles); err != nil {
		if c.fallback != nil {
			return c.fallback, nil
		}
		return nil, err
	}
	return articles, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*model.Article, error) {
	var article model.Article
	if err := c.do(ctx, http.MethodGet, articlePath(id), nil, "", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) Create(ctx context.Context, in model.Input, img *Image) (*model.Article, error) {
	return c.write(ctx, http.MethodPost, "/news", in, img)
}

// Update replaces the text fields of article id, and its image when img is
// non-nil.
func (c *Client) Update(ctx context.Context, id int64, in model.Input, img *Image) (*model.Article, error) {
	return c.write(ctx, http.MethodPut, articlePath(id), in, img)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, articlePath(id), nil, "", nil)
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, "", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func articlePath(id int64) string {
	return "/news/" + strconv.FormatInt(id, 10)
}

func (c *Client) write(ctx context.Context, method, path string, in model.Input, img *Image) (*model.Article, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := []struct{ name, value string }{
		{"title", in.Title},
		{"summary", in.Summary},
		{"content", in.Body},
		{"category", in.Category},
		{"author", in.Author},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if img != nil && img.Reader != nil {
		fw, err := mw.CreateFormFile("image", img.Filename)
		if err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
		if _, err := io.Copy(fw, img.Reader); err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	var article model.Article
	if err := c.do(ctx, method, path, &body, mw.FormDataContentType(), &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
