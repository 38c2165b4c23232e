package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devbush/batchinfer/internal/application"
	"github.com/devbush/batchinfer/internal/config"
)

var (
	// Global flags
	configFlag string
	quietFlag  bool
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "batchinfer",
		Short: "Batch sentiment scoring for CSV files",
		Long: `batchinfer streams rows from a CSV file through a sentiment model in
batches and writes one prediction per row.

While a run is in progress a live metrics file is kept up to date; when it
ends a record is appended to the run history and a per-group summary is
written next to the output file.

Exit codes: 0 success, 1 some rows failed, 2 configuration or I/O error,
130 cancelled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", config.DefaultPath, "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewSummaryCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return application.ExitOK
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return application.ExitConfigOrIO
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if globalApp != nil {
		globalApp.Close()
	}
	if err != nil {
		if msg := err.Error(); msg != "" && !isReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(exitCode(err))
	}
}

// isReported reports whether the error was already shown in the run report.
func isReported(err error) bool {
	var exitErr *exitError
	return errors.As(err, &exitErr) && exitErr.err == nil
}
