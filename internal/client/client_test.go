package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsdesk/internal/model"
	"newsdesk/internal/news"
	"newsdesk/internal/server"
	"newsdesk/internal/store"
	"newsdesk/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(st.Close)

	uploads, err := upload.NewStorage(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	srv := server.NewServer(news.NewService(st, uploads, logger), uploads, logger, server.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_CRUD(t *testing.T) {
	ts := startAPI(t)
	c, err := New(ts.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, ts.URL, c.BaseURL())
	ctx := context.Background()

	created, err := c.Create(ctx, model.Input{Title: "A", Summary: "B", Body: "C", Category: "Tech"},
		&Image{Filename: "cover.png", Reader: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "C", created.Body)
	require.NotEmpty(t, created.ImageURL)

	resp, err := http.Get(ts.URL + created.ImageURL)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "png", string(data))

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	updated, err := c.Update(ctx, created.ID, model.Input{Title: "A2", Body: "C2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, "", updated.Category)

	list, err := c.List(ctx, model.ListFilter{Query: "a2"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestClient_Errors(t *testing.T) {
	ts := startAPI(t)
	c, err := New(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Create(ctx, model.Input{Title: "no body"}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `Field "content" is required and must be a string`, apiErr.Message)
	assert.False(t, IsNotFound(err))

	err = c.Delete(ctx, 42)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "News not found")

	_, err = c.Update(ctx, 42, model.Input{Body: "x"}, nil)
	assert.True(t, IsNotFound(err))
}

func TestClient_Fallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Internal server error"}`)
	}))
	defer ts.Close()
	ctx := context.Background()

	plain, err := New(ts.URL)
	require.NoError(t, err)
	_, err = plain.List(ctx, model.ListFilter{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	withFallback, err := New(ts.URL, WithFallback(DefaultFallback()))
	require.NoError(t, err)
	articles, err := withFallback.List(ctx, model.ListFilter{})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.True(t, articles[0].CreatedAt.After(articles[1].CreatedAt))

	// Fallback applies to List only.
	_, err = withFallback.Get(ctx, 1)
	assert.Error(t, err)
}

func TestClient_FallbackOnUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(url, WithFallback(DefaultFallback()), WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	articles, err := c.List(context.Background(), model.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("localhost:3001")
	assert.Error(t, err)
	_, err = New("ftp://example.com")
	assert.Error(t, err)
}
