package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/series-publisher/internal/export"
	"github.com/jonathan/series-publisher/internal/observability"
)

var plansCommand = &cobra.Command{
	Use:   "plans",
	Short: "Inspect and manage plans",
}

var plansListCommand = &cobra.Command{
	Use:   "list",
	Short: "List plans with their progress",
	Args:  cobra.NoArgs,
	RunE:  plansListCmd,
}

var plansShowCommand = &cobra.Command{
	Use:   "show PLAN_ID",
	Short: "Show a plan and its topics",
	Args:  cobra.ExactArgs(1),
	RunE:  plansShowCmd,
}

var plansDeleteCommand = &cobra.Command{
	Use:   "delete PLAN_ID",
	Short: "Delete a plan with its topics, contents and publish attempts",
	Args:  cobra.ExactArgs(1),
	RunE:  plansDeleteCmd,
}

var plansExportCommand = &cobra.Command{
	Use:   "export PLAN_ID",
	Short: "Write plan progress to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  plansExportCmd,
}

var exportOut string

func init() {
	plansExportCommand.Flags().StringVarP(&exportOut, "out", "o", "", "Output .xlsx path (default plan-<id>.xlsx)")

	plansCommand.AddCommand(plansListCommand, plansShowCommand, plansDeleteCommand, plansExportCommand)
	rootCmd.AddCommand(plansCommand)
}

// withAdminApp loads config, opens the store and runs fn.
func withAdminApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newAdminApp(ctx, cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseID(kind, arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, arg, err)
	}
	return id, nil
}

func plansListCmd(cmd *cobra.Command, _ []string) error {
	return withAdminApp(cmd, func(ctx context.Context, a *app) error {
		plans, err := a.planner.ListPlans(ctx)
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintPlans(plans)
		return nil
	})
}

func plansShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID("plan", args[0])
	if err != nil {
		return err
	}
	return withAdminApp(cmd, func(ctx context.Context, a *app) error {
		detail, err := a.planner.GetPlan(ctx, id)
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintPlanDetail(detail)
		return nil
	})
}

func plansDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID("plan", args[0])
	if err != nil {
		return err
	}
	return withAdminApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.planner.DeletePlan(ctx, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", id)
		return nil
	})
}

func plansExportCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID("plan", args[0])
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = fmt.Sprintf("plan-%s.xlsx", id)
	}
	return withAdminApp(cmd, func(ctx context.Context, a *app) error {
		report, err := export.Load(ctx, a.store, id)
		if err != nil {
			return err
		}
		if err := export.SaveAs(out, report); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	})
}
