package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "@every 1h", cfg.SweepSchedule)
	assert.Equal(t, 10*time.Minute, cfg.SweepGrace)
	assert.True(t, cfg.MigrateOnStart)
	assert.False(t, cfg.Development)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NEWSDESK_STORE", " Badger ")
	t.Setenv("BADGER_PATH", "/tmp/news")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HTTP_WRITE_TIMEOUT", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.example;http://b.example")
	t.Setenv("NEWSDESK_DEV", "true")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreBadger, cfg.Store)
	assert.Equal(t, "/tmp/news", cfg.BadgerPath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Development)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("NEWSDESK_STORE", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store "mysql"`)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Store: StoreBadger, BadgerPath: "data", Port: "3001", UploadDir: "uploads"}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.UploadDir = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Store = StorePostgres
	assert.Error(t, cfg.Validate(), "postgres needs a database url")
}
