package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := Parse([]byte(``))
	require.NoError(t, err)
	assert.Equal(t, "fs", cfg.CacheBackend)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestParse_OverridesKnownFields(t *testing.T) {
	cfg, err := Parse([]byte("cache_root = \"build/cache\"\nconcurrency = 4\nfail_fast = true\n"))
	require.NoError(t, err)
	assert.Equal(t, "build/cache", cfg.CacheRoot)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.FailFast)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("bogus_field = true\n"))
	require.Error(t, err)
}

func TestParse_RejectsUnsupportedBackend(t *testing.T) {
	_, err := Parse([]byte("cache_backend = \"memcached\"\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParse_RejectsZeroConcurrency(t *testing.T) {
	_, err := Parse([]byte("concurrency = 0\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadOptional_MissingConfigIsNotAnError(t *testing.T) {
	root := t.TempDir()
	cfg, ok, err := LoadOptional(root)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "fs", cfg.CacheBackend)
}

func TestLoadOptional_LoadsOnlyFromTitaniumDir(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "config.toml"), []byte("concurrency = 8\n"), 0o644))

	cfg, ok, err := LoadOptional(root)
	require.NoError(t, err)
	assert.False(t, ok, "a config.toml outside .titanium/ must not be picked up")
	assert.Equal(t, 1, cfg.Concurrency)

	require.NoError(t, os.MkdirAll(filepath.Join(root, ".titanium"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".titanium", "config.toml"), []byte("concurrency = 8\n"), 0o644))

	cfg, ok, err = LoadOptional(root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLoadOptional_EnvOverridesCacheRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".titanium"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".titanium", "config.toml"), []byte("cache_root = \"original\"\n"), 0o644))

	t.Setenv("TITANIUM_CACHE_ROOT", "/tmp/override-cache")
	cfg, ok, err := LoadOptional(root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/override-cache", cfg.CacheRoot)
}

func TestLoadOptional_EnvDisablesPersistence(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".titanium"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".titanium", "config.toml"), []byte(""), 0o644))

	t.Setenv("TITANIUM_PERSISTENCE_DISABLE", "1")
	cfg, _, err := LoadOptional(root)
	require.NoError(t, err)
	assert.False(t, cfg.PersistenceEnabled, "expected persistence disabled by env override")
}
