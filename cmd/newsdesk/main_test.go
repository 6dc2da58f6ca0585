package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintArticles(t *testing.T) {
	now := time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)
	var out bytes.Buffer

	err := printArticles(&out, []model.Article{
		{ID: 2, Title: "Second", Body: "<p>two words</p>", Category: "Tech", Author: "Ana", CreatedAt: now.Add(-5 * time.Hour)},
		{ID: 1, Title: "First", Body: "x", CreatedAt: now.Add(-10 * 24 * time.Hour)},
	}, now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Second")
	assert.Contains(t, lines[1], "5 hours ago")
	assert.Contains(t, lines[1], "1 min")
	assert.Contains(t, lines[2], "General")
	assert.Contains(t, lines[2], "Unknown author")
	assert.Contains(t, lines[2], "Jul 10, 2025")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestApplyFlags(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--store", "badger", "--redis", "localhost:6379"}))

	c := &config.Config{Store: config.StorePostgres, UploadDir: "uploads"}
	applyFlags(rootCmd, c)

	assert.Equal(t, "badger", c.Store)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, "uploads", c.UploadDir, "unset flags keep the environment value")
}
