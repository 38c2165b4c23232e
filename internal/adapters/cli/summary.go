package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbush/batchinfer/internal/adapters/cli/tui"
	"github.com/devbush/batchinfer/internal/adapters/tracking"
)

// NewSummaryCmd creates the summary command
func NewSummaryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "summary [summary.json]",
		Short: "Show the group summary of the last run",
		Long: `Show per-group sentiment counts written by the last run.

Without an argument the summary next to the configured output CSV is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := GetApp()
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			path, _ := tracking.SummaryPaths(app.Config.Output.Path)
			if len(args) == 1 {
				path = args[0]
			}

			report, err := tracking.ReadSummary(app.FS, path)
			if err != nil {
				return fmt.Errorf("failed to read group summary: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(report, limit))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Number of groups to show (0 = all)")

	return cmd
}
