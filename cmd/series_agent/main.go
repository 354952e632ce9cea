// Package main provides the series_agent CLI, which turns long-form resources
// into a published post series one topic at a time.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "series_agent",
	Short: "Plan, write and publish a post series from a book or course",
	Long: `series_agent decomposes a resource into an ordered backlog of topics and, on each run,
advances the backlog by one topic: discovery, drafting, refinement and publication.

Configuration can be loaded from a JSON or YAML file using --config. Command-line flags
override config file values; environment variables fill whatever is still empty.`,
	SilenceUsage: true,
}

var global struct {
	configPath  string
	databaseURL string
	dryRun      bool
	logLevel    string
	logFormat   string
	provider    string
	model       string
	apiKey      string
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "Path to a JSON or YAML config file")
	pf.StringVar(&global.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	pf.BoolVar(&global.dryRun, "dry-run", false, "Use an in-memory store and do not submit posts")
	pf.StringVar(&global.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&global.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&global.provider, "provider", "", "LLM provider: gemini, openai or anthropic")
	pf.StringVar(&global.model, "model", "", "LLM model name for every tier")
	pf.StringVar(&global.apiKey, "api-key", "", "LLM API key (defaults to the provider's env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
