package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "Check the database and the publishing service",
	Args:  cobra.NoArgs,
	RunE:  checkCmd,
}

func init() {
	rootCmd.AddCommand(checkCommand)
}

// connectivity reports whether the publishing service has a logged-in account.
type connectivity interface {
	CheckConnectivity(ctx context.Context) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func checkCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return runChecks(ctx, cmd.OutOrStdout(), store, newPublishClient(cfg, logger))
}

// runChecks prints one line per dependency and fails if any is unhealthy.
func runChecks(ctx context.Context, w io.Writer, store pinger, pub connectivity) error {
	failed := 0

	if err := store.Ping(ctx); err != nil {
		failed++
		_, _ = fmt.Fprintf(w, "database:  FAIL (%v)\n", err)
	} else {
		_, _ = fmt.Fprintln(w, "database:  ok")
	}

	switch ok, err := pub.CheckConnectivity(ctx); {
	case err != nil:
		failed++
		_, _ = fmt.Fprintf(w, "publisher: FAIL (%v)\n", err)
	case !ok:
		failed++
		_, _ = fmt.Fprintln(w, "publisher: FAIL (not logged in)")
	default:
		_, _ = fmt.Fprintln(w, "publisher: ok")
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
