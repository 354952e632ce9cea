package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/series-publisher/internal/config"
)

// loadConfig resolves configuration for a command: file, then explicitly set
// flags, then environment, then defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return buildConfig(global.configPath, flagOverrides(cmd), os.Getenv)
}

func buildConfig(path string, override func(*config.Config), getenv func(string) string) (*config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if override != nil {
		override(&cfg)
	}
	// Provider decides which API key variable applies.
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = config.Defaults().LLM.Provider
	}
	cfg.ApplyEnv(getenv)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagOverrides applies only the global flags the user actually set.
func flagOverrides(cmd *cobra.Command) func(*config.Config) {
	flags := cmd.Flags()
	return func(cfg *config.Config) {
		if flags.Changed("db-url") {
			cfg.DatabaseURL = global.databaseURL
		}
		if flags.Changed("dry-run") {
			cfg.DryRun = global.dryRun
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = global.logLevel
		}
		if flags.Changed("log-format") {
			cfg.LogFormat = global.logFormat
		}
		if flags.Changed("provider") {
			cfg.LLM.Provider = global.provider
		}
		if flags.Changed("model") {
			cfg.LLM.Model = global.model
		}
		if flags.Changed("api-key") {
			cfg.LLM.APIKey = global.apiKey
		}
	}
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
