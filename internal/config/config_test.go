package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "media", cfg.StorageBucket)
	require.False(t, cfg.StorageUseSSL)
	require.False(t, cfg.IsProduction())

	require.Equal(t, int64(20<<20), cfg.Upload.MaxPictureBytes)
	require.Equal(t, int64(100<<20), cfg.Upload.MaxUploadBytes)
	require.Equal(t, 10, cfg.Upload.MaxBatchFiles)
	require.Equal(t, 1, cfg.Upload.MinDimension)
	require.Equal(t, 4096, cfg.Upload.MaxDimension)
	require.Equal(t, 256, cfg.Upload.ThumbnailSize)
	require.Equal(t, 30*time.Minute, cfg.Upload.CacheMaxAge)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("UPLOAD_MAX_PICTURE_BYTES", "1048576")
	t.Setenv("UPLOAD_CACHE_MAX_AGE", "15s")

	cfg := Load()

	require.Equal(t, "9090", cfg.Port)
	require.True(t, cfg.IsProduction())
	require.True(t, cfg.StorageUseSSL)
	require.Equal(t, int64(1<<20), cfg.Upload.MaxPictureBytes)
	require.Equal(t, 15*time.Second, cfg.Upload.CacheMaxAge)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("UPLOAD_MAX_BATCH_FILES", "lots")
	t.Setenv("UPLOAD_CACHE_MAX_AGE", "soon")

	cfg := Load()

	require.Equal(t, 10, cfg.Upload.MaxBatchFiles)
	require.Equal(t, 30*time.Minute, cfg.Upload.CacheMaxAge)
}
