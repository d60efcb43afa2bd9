package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecfs-dev/vecfs/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "./vecfs-data.jsonl", cfg.Storage.File)
	assert.Equal(t, "none", cfg.Embedder.Provider)
	assert.Equal(t, 0.01, cfg.Embedder.Threshold)
	assert.True(t, cfg.Embedder.Normalise)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.InDelta(t, 0.10, cfg.Search.FeedbackWeight, 1e-9)
	assert.Equal(t, ":8089", cfg.API.ListenAddr)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "storage:\n  file: /tmp/other.jsonl\nembedder:\n  provider: ollama\n  model: mxbai-embed-large\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.jsonl", cfg.Storage.File)
	assert.Equal(t, "ollama", cfg.Embedder.Provider)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedder.Model)
}

func TestLoadVecfsFileEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "storage:\n  file: /tmp/from-file.jsonl\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("VECFS_FILE", "/tmp/from-env.jsonl")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-env.jsonl", cfg.Storage.File)
}

func TestLoadEmbedderEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("VECFS_EMBEDDER_PROVIDER", "openai")
	t.Setenv("VECFS_EMBEDDER_API_KEY", "sk-test-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "sk-test-key", cfg.Embedder.APIKey)
}

func TestEmbedderConfigStringMasksAPIKey(t *testing.T) {
	ec := config.EmbedderConfig{Provider: "openai", APIKey: "sk-abcdefghijklmnop"}
	s := ec.String()

	assert.NotContains(t, s, "sk-abcdefghijklmnop")
	assert.Contains(t, s, "sk-a")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
