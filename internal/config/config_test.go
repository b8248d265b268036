package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  token: sk-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "lt", cfg.Conversation.DefaultLanguage)
	assert.Equal(t, 3, cfg.Conversation.MaxRetries)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadEnvOverridesToken(t *testing.T) {
	path := writeConfig(t, `
llm:
  token: from-file
`)
	t.Setenv("HELPLINE_LLM_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Token)
}

func TestLoadEnvOverridesSettings(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: memory
llm:
  token: sk-test
http:
  addr: ":8080"
`)
	t.Setenv("HELPLINE_LOG_LEVEL", "debug")
	t.Setenv("HELPLINE_STORE_BACKEND", "redis")
	t.Setenv("HELPLINE_REDIS_ADDR", "redis:6380")
	t.Setenv("HELPLINE_LLM_MODEL", "gpt-4o")
	t.Setenv("HELPLINE_HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6380", cfg.Store.RedisAddr)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadEnvOverrideStillValidated(t *testing.T) {
	path := writeConfig(t, `
llm:
  token: sk-test
`)
	t.Setenv("HELPLINE_STORE_BACKEND", "etcd")

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to validate config")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: etcd
llm:
  token: sk-test
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to validate config")
}

func TestLoadRejectsMissingToken(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: sqlite
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to validate config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
