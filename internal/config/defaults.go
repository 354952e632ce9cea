package config

import (
	"sort"
	"time"
)

// Provider names accepted in llm.provider
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Discovery backends accepted in discovery.backend
const (
	BackendXHS    = "xhs"
	BackendGoogle = "google"
	BackendNone   = "none"
)

// DefaultServiceURL is where a local xiaohongshu-mcp service listens.
const DefaultServiceURL = "http://localhost:18060"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pool: PoolConfig{
			MaxConns:       10,
			MaxOverflow:    20,
			AcquireTimeout: Duration(30 * time.Second),
		},
		LLM: LLMConfig{
			Provider: ProviderGemini,
		},
		Discovery: DiscoveryConfig{
			Backend:    BackendXHS,
			ServiceURL: DefaultServiceURL,
			TopN:       10,
			CacheTTL:   Duration(6 * time.Hour),
		},
		Drafting: DraftingConfig{
			ReferenceLimit: 5,
		},
		Publish: PublishConfig{
			ServiceURL:    DefaultServiceURL,
			MediaDir:      "assets/default_images",
			MaxTitleRunes: 20,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		StageTimeout: Duration(120 * time.Second),
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fillString(&result.DatabaseURL, defaults.DatabaseURL)
	fillString(&result.LogLevel, defaults.LogLevel)
	fillString(&result.LogFormat, defaults.LogFormat)
	fillString(&result.LLM.Provider, defaults.LLM.Provider)
	fillString(&result.LLM.Model, defaults.LLM.Model)
	fillString(&result.LLM.BaseURL, defaults.LLM.BaseURL)
	fillString(&result.LLM.APIKey, defaults.LLM.APIKey)
	fillString(&result.Discovery.Backend, defaults.Discovery.Backend)
	fillString(&result.Discovery.ServiceURL, defaults.Discovery.ServiceURL)
	fillString(&result.Discovery.GoogleAPIKey, defaults.Discovery.GoogleAPIKey)
	fillString(&result.Discovery.GoogleCX, defaults.Discovery.GoogleCX)
	fillString(&result.Discovery.GoogleSite, defaults.Discovery.GoogleSite)
	fillString(&result.Discovery.RedisAddr, defaults.Discovery.RedisAddr)
	fillString(&result.Publish.ServiceURL, defaults.Publish.ServiceURL)
	fillString(&result.Publish.MediaDir, defaults.Publish.MediaDir)

	// Int fields: use default if zero
	fillInt(&result.Pool.MaxConns, defaults.Pool.MaxConns)
	fillInt(&result.Pool.MaxOverflow, defaults.Pool.MaxOverflow)
	fillInt(&result.LLM.MaxTokens, defaults.LLM.MaxTokens)
	fillInt(&result.Discovery.TopN, defaults.Discovery.TopN)
	fillInt(&result.Drafting.ReferenceLimit, defaults.Drafting.ReferenceLimit)
	fillInt(&result.Publish.MaxTitleRunes, defaults.Publish.MaxTitleRunes)
	fillInt(&result.Server.Port, defaults.Server.Port)

	// Durations
	fillDuration(&result.Pool.AcquireTimeout, defaults.Pool.AcquireTimeout)
	fillDuration(&result.Discovery.CacheTTL, defaults.Discovery.CacheTTL)
	fillDuration(&result.StageTimeout, defaults.StageTimeout)

	if result.LLM.Temperature == 0 {
		result.LLM.Temperature = defaults.LLM.Temperature
	}
	if len(result.Publish.Media) == 0 {
		result.Publish.Media = defaults.Publish.Media
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills still-empty secrets and endpoints from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	fillString(&c.DatabaseURL, getenv("DATABASE_URL"))
	fillString(&c.Discovery.RedisAddr, getenv("REDIS_ADDR"))
	fillString(&c.Discovery.GoogleAPIKey, getenv("GOOGLE_SEARCH_API_KEY"))
	fillString(&c.Discovery.GoogleCX, getenv("GOOGLE_SEARCH_CX"))
	fillString(&c.Discovery.ServiceURL, getenv("DISCOVERY_SERVICE_URL"))
	fillString(&c.Publish.ServiceURL, getenv("PUBLISH_SERVICE_URL"))

	switch c.LLM.Provider {
	case ProviderOpenAI:
		fillString(&c.LLM.APIKey, getenv("OPENAI_API_KEY"))
	case ProviderAnthropic:
		fillString(&c.LLM.APIKey, getenv("ANTHROPIC_API_KEY"))
	default:
		fillString(&c.LLM.APIKey, getenv("GEMINI_API_KEY"))
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func fillDuration(dst *Duration, def Duration) {
	if *dst == 0 {
		*dst = def
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
