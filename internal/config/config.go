// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults, CLI flags or environment variables.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	DryRun      bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`           // Use the in-memory store
	LogLevel    string `json:"log_level,omitempty" yaml:"log_level,omitempty"`       // debug, info, warn or error
	LogFormat   string `json:"log_format,omitempty" yaml:"log_format,omitempty"`     // text or json

	Pool      PoolConfig      `json:"pool,omitempty" yaml:"pool,omitempty"`
	LLM       LLMConfig       `json:"llm,omitempty" yaml:"llm,omitempty"`
	Discovery DiscoveryConfig `json:"discovery,omitempty" yaml:"discovery,omitempty"`
	Drafting  DraftingConfig  `json:"drafting,omitempty" yaml:"drafting,omitempty"`
	Publish   PublishConfig   `json:"publish,omitempty" yaml:"publish,omitempty"`
	Server    ServerConfig    `json:"server,omitempty" yaml:"server,omitempty"`

	StageTimeout Duration `json:"stage_timeout,omitempty" yaml:"stage_timeout,omitempty"` // Bound on each external call
}

// PoolConfig bounds the database connection pool.
type PoolConfig struct {
	MaxConns       int      `json:"max_conns,omitempty" yaml:"max_conns,omitempty"`
	MaxOverflow    int      `json:"max_overflow,omitempty" yaml:"max_overflow,omitempty"`
	AcquireTimeout Duration `json:"acquire_timeout,omitempty" yaml:"acquire_timeout,omitempty"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider    string  `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini, openai or anthropic
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`       // Overrides every tier
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"` // OpenAI-compatible endpoint
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// DiscoveryConfig selects and tunes the reference search backend.
type DiscoveryConfig struct {
	Backend      string   `json:"backend,omitempty" yaml:"backend,omitempty"` // xhs, google or none
	ServiceURL   string   `json:"service_url,omitempty" yaml:"service_url,omitempty"`
	TopN         int      `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	GoogleAPIKey string   `json:"google_api_key,omitempty" yaml:"google_api_key,omitempty"`
	GoogleCX     string   `json:"google_cx,omitempty" yaml:"google_cx,omitempty"`
	GoogleSite   string   `json:"google_site,omitempty" yaml:"google_site,omitempty"`
	RedisAddr    string   `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"` // Enables result caching
	CacheTTL     Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`
}

// DraftingConfig tunes draft generation.
type DraftingConfig struct {
	ReferenceLimit int `json:"reference_limit,omitempty" yaml:"reference_limit,omitempty"`
}

// PublishConfig configures the publication service.
type PublishConfig struct {
	ServiceURL    string   `json:"service_url,omitempty" yaml:"service_url,omitempty"`
	MediaDir      string   `json:"media_dir,omitempty" yaml:"media_dir,omitempty"`
	Media         []string `json:"media,omitempty" yaml:"media,omitempty"`
	MaxTitleRunes int      `json:"max_title_runes,omitempty" yaml:"max_title_runes,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the command.
func (c *Config) Validate() error {
	// Validate numeric ranges
	nonNegative := map[string]int{
		"pool.max_conns":           c.Pool.MaxConns,
		"pool.max_overflow":        c.Pool.MaxOverflow,
		"discovery.top_n":          c.Discovery.TopN,
		"drafting.reference_limit": c.Drafting.ReferenceLimit,
		"publish.max_title_runes":  c.Publish.MaxTitleRunes,
		"llm.max_tokens":           c.LLM.MaxTokens,
		"server.port":              c.Server.Port,
	}
	for _, name := range sortedKeys(nonNegative) {
		if nonNegative[name] < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}
	if c.Pool.AcquireTimeout < 0 || c.StageTimeout < 0 || c.Discovery.CacheTTL < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}

	switch c.LLM.Provider {
	case "", ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}

	switch c.Discovery.Backend {
	case "", BackendXHS, BackendGoogle, BackendNone:
	default:
		return fmt.Errorf("config error: unknown discovery backend %q", c.Discovery.Backend)
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: unknown log format %q", c.LogFormat)
	}

	if c.Publish.MediaDir != "" && len(c.Publish.Media) == 0 {
		if info, err := os.Stat(c.Publish.MediaDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: media_dir is not a directory: %s", c.Publish.MediaDir)
		}
	}

	return nil
}
