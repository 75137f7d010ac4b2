package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"BLOG_API_BASE_URL", "BLOG_API_TOKEN", "CONSOLE_ADDR", "LOG_LEVEL", "UPLOAD_MODE", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), CONFIG_FILE))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Listing.PageSize)
	assert.Equal(t, 500, cfg.Listing.FilterResultCap)
	assert.Equal(t, 3, cfg.Listing.TagBadgeLimit)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, UploadModeAPI, cfg.Upload.Mode)
	assert.Equal(t, "videos/", cfg.Upload.S3.KeyPrefix)
}

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yamlBody := `
logging:
  level: debug
api:
  base_url: http://yaml-api:9000
  timeout: 3s
listing:
  page_size: 10
upload:
  mode: S3
  bucket: media-bucket
  s3:
    region: eu-north-1
    expires: 30m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE), []byte(yamlBody), 0o644))
	t.Setenv("BLOG_API_BASE_URL", "http://env-api:8000")

	cfg, err := Load(filepath.Join(dir, CONFIG_FILE))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://env-api:8000", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10, cfg.Listing.PageSize)
	assert.Equal(t, UploadModeS3, cfg.Upload.Mode)
	assert.Equal(t, "media-bucket", cfg.Upload.Bucket)
	assert.Equal(t, 30*time.Minute, cfg.Upload.S3.Expires)
}

func TestLoadRejectsS3ModeWithoutBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_MODE", "s3")

	_, err := Load(filepath.Join(t.TempDir(), CONFIG_FILE))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownUploadMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_MODE", "ftp")

	_, err := Load(filepath.Join(t.TempDir(), CONFIG_FILE))
	assert.Error(t, err)
}
