package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbush/batchinfer/internal/adapters/cli/tui"
	"github.com/devbush/batchinfer/internal/adapters/tracking"
	"github.com/devbush/batchinfer/internal/domain"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [live-metrics.json]",
		Short: "Follow a run's live metrics",
		Long: `Poll the live metrics file of a run and show its progress.

Without an argument the configured output.live_path is watched. The view
exits when the run reaches a terminal status unless --follow is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := GetApp()
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			path := app.Config.Output.LivePath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("%w: no live metrics path configured", domain.ErrConfiguration)
			}
			if interval <= 0 {
				return fmt.Errorf("%w: --interval must be positive", domain.ErrConfiguration)
			}

			load := func() (domain.Snapshot, error) {
				return tracking.ReadSnapshot(app.FS, path)
			}

			snap, ok, err := tui.RunWatch(load, interval, follow)
			if err != nil {
				return err
			}
			if ok && snap.Status.Terminal() {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunResult(snap, map[string]string{"Live": path}))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep watching after the run ends")

	return cmd
}
