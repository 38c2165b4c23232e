package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbush/batchinfer/internal/adapters/cli/tui"
	"github.com/devbush/batchinfer/internal/application"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Long: `List recorded runs, newest first.

Runs are read from the SQLite history database when output.history_db is
set, otherwise from the JSONL history file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := GetApp()
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			reader, err := app.HistoryReader()
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}

			runs, totals, err := application.NewHistoryService(reader).Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to read run history: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.RenderHistory(runs))
			if totals.Runs > 0 {
				fmt.Fprintf(out, "\n%s runs, %s complete, %s rows scored, %s failed\n",
					tui.FormatCount(totals.Runs), tui.FormatCount(totals.Completed),
					tui.FormatCount(totals.Processed), tui.FormatCount(totals.Failed))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 = all)")

	return cmd
}
