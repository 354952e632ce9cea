package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"database_url": "postgres://localhost/series",
		"dry_run": true,
		"pool": {"max_conns": 4, "acquire_timeout": "5s"},
		"llm": {"provider": "openai", "model": "deepseek-chat"},
		"discovery": {"backend": "google", "top_n": 8, "cache_ttl": 60},
		"publish": {"media": ["a.png"]},
		"stage_timeout": "90s"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost/series", cfg.DatabaseURL)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 4, cfg.Pool.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Pool.AcquireTimeout.Std())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "google", cfg.Discovery.Backend)
	assert.Equal(t, time.Minute, cfg.Discovery.CacheTTL.Std())
	assert.Equal(t, []string{"a.png"}, cfg.Publish.Media)
	assert.Equal(t, 90*time.Second, cfg.StageTimeout.Std())
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database_url: postgres://localhost/series
log_format: json
pool:
  max_overflow: 5
  acquire_timeout: 2m
discovery:
  redis_addr: localhost:6379
  cache_ttl: 30
publish:
  max_title_runes: 18
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5, cfg.Pool.MaxOverflow)
	assert.Equal(t, 2*time.Minute, cfg.Pool.AcquireTimeout.Std())
	assert.Equal(t, "localhost:6379", cfg.Discovery.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Discovery.CacheTTL.Std())
	assert.Equal(t, 18, cfg.Publish.MaxTitleRunes)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.json", `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.yml", "pool: [unclosed"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "config.json", `{"stage_timeout": "soon"}`))
	assert.Error(t, err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "defaults", cfg: Defaults()},
		{name: "negative top_n", cfg: Config{Discovery: DiscoveryConfig{TopN: -1}}, wantErr: "discovery.top_n"},
		{name: "negative pool", cfg: Config{Pool: PoolConfig{MaxConns: -2}}, wantErr: "pool.max_conns"},
		{name: "negative duration", cfg: Config{StageTimeout: Duration(-time.Second)}, wantErr: "durations"},
		{name: "unknown provider", cfg: Config{LLM: LLMConfig{Provider: "llama"}}, wantErr: "unknown llm provider"},
		{name: "unknown backend", cfg: Config{Discovery: DiscoveryConfig{Backend: "bing"}}, wantErr: "unknown discovery backend"},
		{name: "bad temperature", cfg: Config{LLM: LLMConfig{Temperature: 3}}, wantErr: "temperature"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, wantErr: "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MediaDirMustBeDirectory(t *testing.T) {
	file := writeFile(t, "not-a-dir.png", "x")
	cfg := Config{Publish: PublishConfig{MediaDir: file}}
	assert.Error(t, cfg.Validate())

	cfg.Publish.Media = []string{file}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		Pool:      PoolConfig{MaxConns: 3},
		Discovery: DiscoveryConfig{Backend: BackendGoogle},
	}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 3, merged.Pool.MaxConns)
	assert.Equal(t, 20, merged.Pool.MaxOverflow)
	assert.Equal(t, 30*time.Second, merged.Pool.AcquireTimeout.Std())
	assert.Equal(t, BackendGoogle, merged.Discovery.Backend)
	assert.Equal(t, 10, merged.Discovery.TopN)
	assert.Equal(t, 6*time.Hour, merged.Discovery.CacheTTL.Std())
	assert.Equal(t, 5, merged.Drafting.ReferenceLimit)
	assert.Equal(t, 120*time.Second, merged.StageTimeout.Std())
	assert.Equal(t, ProviderGemini, merged.LLM.Provider)
	assert.Equal(t, "assets/default_images", merged.Publish.MediaDir)
	assert.Equal(t, 20, merged.Publish.MaxTitleRunes)

	// The receiver is not modified
	assert.Equal(t, 0, cfg.Pool.MaxOverflow)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":        "postgres://env/db",
		"OPENAI_API_KEY":      "sk-openai",
		"GEMINI_API_KEY":      "gem",
		"REDIS_ADDR":          "redis:6379",
		"PUBLISH_SERVICE_URL": "http://publish:18060",
	}
	getenv := func(k string) string { return env[k] }

	cfg := Config{LLM: LLMConfig{Provider: ProviderOpenAI}, DatabaseURL: "postgres://file/db"}
	cfg.ApplyEnv(getenv)

	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL, "explicit values win over env")
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
	assert.Equal(t, "redis:6379", cfg.Discovery.RedisAddr)
	assert.Equal(t, "http://publish:18060", cfg.Publish.ServiceURL)

	gem := Config{}
	gem.ApplyEnv(getenv)
	assert.Equal(t, "gem", gem.LLM.APIKey)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))
}
