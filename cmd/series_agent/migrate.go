package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/series-publisher/internal/db"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE:  migrateCmd,
}

func init() {
	rootCmd.AddCommand(migrateCommand)
}

func migrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		return fmt.Errorf("migrate needs a database; --dry-run uses the in-memory store")
	}
	logger := newLogger(cfg, os.Stderr)

	store, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	database, ok := store.(*db.DB)
	if !ok {
		return fmt.Errorf("migrate needs a PostgreSQL store")
	}
	version, dirty, err := database.Migrate()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
