package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "database:\n  connection_string: \"postgres://localhost/test\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1536, cfg.Embeddings.RemoteDimensions)
	assert.Equal(t, 384, cfg.Embeddings.LocalDimensions)
	assert.Equal(t, 300, cfg.Cache.PromptTTLSecs)
	assert.Equal(t, 6, cfg.Reasoning.MaxSteps)
	assert.Equal(t, 10, cfg.Reasoning.MaxToolCallsPerRequest)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateProductionRequiresEmbeddingKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	path := writeTempConfig(t, "embeddings:\n  remote_host: \"https://api.openai.com/v1\"\nllm:\n  cascade:\n    - name: lite\n      api_key: key\n")
	_, err := Load(path)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "embeddings.remote_api_key", cerr.Field)
}

func TestValidateProductionRequiresCascade(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	path := writeTempConfig(t, "database:\n  connection_string: \"postgres://localhost/test\"\n")
	_, err := Load(path)
	require.Error(t, err)
}
