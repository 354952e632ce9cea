package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCommand = &cobra.Command{
	Use:   "topics",
	Short: "Manage individual topics",
}

var topicsResetCommand = &cobra.Command{
	Use:   "reset TOPIC_ID",
	Short: "Move a failed or stuck topic back to pending",
	Long: `Moves a failed topic, or one left in processing by an interrupted run, back to pending
so the next run picks it up again.`,
	Args: cobra.ExactArgs(1),
	RunE: topicsResetCmd,
}

func init() {
	topicsCommand.AddCommand(topicsResetCommand)
	rootCmd.AddCommand(topicsCommand)
}

func topicsResetCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID("topic", args[0])
	if err != nil {
		return err
	}
	return withAdminApp(cmd, func(ctx context.Context, a *app) error {
		topic, err := a.planner.ResetTopic(ctx, id)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Topic %d %q of plan %s is pending again\n", topic.Position, topic.Title, topic.PlanID)
		return nil
	})
}
