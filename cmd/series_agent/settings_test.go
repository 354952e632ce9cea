package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/series-publisher/internal/config"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestBuildConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://file/db
llm:
  provider: anthropic
discovery:
  top_n: 7
stage_timeout: 45s
`), 0o644))

	override := func(c *config.Config) {
		c.DatabaseURL = "postgres://flag/db"
	}
	env := envFrom(map[string]string{
		"DATABASE_URL":      "postgres://env/db",
		"ANTHROPIC_API_KEY": "sk-ant",
		"GEMINI_API_KEY":    "gm",
		"REDIS_ADDR":        "localhost:6379",
	})

	cfg, err := buildConfig(path, override, env)
	require.NoError(t, err)

	assert.Equal(t, "postgres://flag/db", cfg.DatabaseURL)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "localhost:6379", cfg.Discovery.RedisAddr)
	assert.Equal(t, 7, cfg.Discovery.TopN)
	assert.Equal(t, 45*time.Second, cfg.StageTimeout.Std())
	assert.Equal(t, 5, cfg.Drafting.ReferenceLimit)
	assert.Equal(t, 20, cfg.Publish.MaxTitleRunes)
}

func TestBuildConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := buildConfig("", nil, envFrom(map[string]string{"GEMINI_API_KEY": "gm"}))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gm", cfg.LLM.APIKey)
	assert.Equal(t, config.BackendXHS, cfg.Discovery.Backend)
	assert.Equal(t, 120*time.Second, cfg.StageTimeout.Std())
	assert.Equal(t, 10, cfg.Pool.MaxConns)
	assert.Equal(t, 20, cfg.Pool.MaxOverflow)
}

func TestBuildConfig_Errors(t *testing.T) {
	_, err := buildConfig(filepath.Join(t.TempDir(), "missing.json"), nil, envFrom(nil))
	assert.ErrorContains(t, err, "failed to load config")

	_, err = buildConfig("", func(c *config.Config) { c.LLM.Provider = "mystery" }, envFrom(nil))
	assert.ErrorContains(t, err, "config error")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
