package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/series-publisher/internal/observability"
	"github.com/jonathan/series-publisher/internal/orchestrator"
)

var drainAllCommand = &cobra.Command{
	Use:   "drain-all",
	Short: "Advance every plan with pending topics until none remain",
	Long: `Drains all plans concurrently. Each plan is handled by a single worker that runs its
topics one after another; --concurrency bounds how many plans are worked at once.`,
	RunE: drainAllCmd,
}

var drainConcurrency int

func init() {
	drainAllCommand.Flags().IntVarP(&drainConcurrency, "concurrency", "c", orchestrator.DefaultConcurrency, "Plans drained at once")
	rootCmd.AddCommand(drainAllCommand)
}

func drainAllCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.orchestrator.DrainAll(ctx, drainConcurrency)
	observability.NewPrinter(os.Stdout).PrintDrainSummary(results)
	return err
}
