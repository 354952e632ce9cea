package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/series-publisher/internal/observability"
	"github.com/jonathan/series-publisher/internal/pipeline"
	"github.com/jonathan/series-publisher/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Advance a plan by one topic",
	Long: `Creates a plan for --resource, or continues the plan given by --plan-id, then claims the
next pending topic and takes it through discovery, drafting, refinement and publication.

With --drain the command keeps going until the plan has no pending topics.`,
	RunE: runCmd,
}

var (
	runResource string
	runKind     string
	runPlanID   string
	runDrain    bool
	runVerbose  bool
)

func init() {
	runCommand.Flags().StringVarP(&runResource, "resource", "r", "", "Name of the resource to plan (creates a new plan)")
	runCommand.Flags().StringVarP(&runKind, "kind", "k", "", "Resource kind, e.g. book or course (default book)")
	runCommand.Flags().StringVarP(&runPlanID, "plan-id", "p", "", "Existing plan to continue")
	runCommand.Flags().BoolVar(&runDrain, "drain", false, "Keep running until the plan has no pending topics")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print stage progress")

	rootCmd.AddCommand(runCommand)
}

// buildRunRequest turns run flags into a request.
func buildRunRequest(resource, kind, planID string) (*types.RunRequest, error) {
	req := &types.RunRequest{ResourceName: strings.TrimSpace(resource), ResourceKind: kind}
	if planID != "" {
		id, err := uuid.Parse(planID)
		if err != nil {
			return nil, fmt.Errorf("invalid --plan-id: %w", err)
		}
		req.PlanID = &id
	}
	if req.ResourceName == "" && req.PlanID == nil {
		return nil, fmt.Errorf("either --resource or --plan-id must be provided")
	}
	return req, nil
}

func runCmd(cmd *cobra.Command, _ []string) error {
	req, err := buildRunRequest(runResource, runKind, runPlanID)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	printer := observability.NewPrinter(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var onProgress pipeline.ProgressCallback
	if runVerbose {
		onProgress = printer.PrintProgress
	}
	a, err := newApp(ctx, cfg, logger, onProgress)
	if err != nil {
		return err
	}
	defer a.Close()

	return runOnce(ctx, a, printer, req, runDrain)
}

// runOnce performs one invocation and, when drain is set, continues the same
// plan until it runs out of pending topics.
func runOnce(ctx context.Context, a *app, printer *observability.Printer, req *types.RunRequest, drain bool) error {
	result, err := a.orchestrator.Run(ctx, req)
	printer.PrintRunResult(result)
	if err != nil {
		return err
	}

	if !drain {
		if result.TopicID != nil && !result.Success {
			return fmt.Errorf("topic failed: %s", result.ErrorMessage)
		}
		return nil
	}

	if !result.HasMoreTopics || result.PlanID == nil {
		return nil
	}
	rest, err := a.orchestrator.DrainPlan(ctx, *result.PlanID)
	for i := range rest {
		printer.PrintRunResult(&rest[i])
	}
	return err
}
