package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbush/batchinfer/internal/adapters/cli/tui"
	"github.com/devbush/batchinfer/internal/adapters/tracking"
	"github.com/devbush/batchinfer/internal/application"
	"github.com/devbush/batchinfer/internal/config"
	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a CSV file",
		Long: `Score every row of the input CSV and write predictions to the output CSV.

Settings come from the config file, then environment variables
(INPUT_CSV, OUTPUT_CSV, BATCH_SIZE, ...), then flags.

Example:
  batchinfer run -i data/reviews.csv -o output/predictions.csv
  batchinfer run --mode headerless --text-col-index 1 --max-rows 1000
  batchinfer run --backend http --endpoint http://localhost:8080/predict`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	f := cmd.Flags()
	f.StringP("input", "i", "", "Input CSV path (.gz, .zst, .lz4, .xz, .br accepted)")
	f.StringP("output", "o", "", "Output CSV path")
	f.String("mode", "", "CSV mode: header or headerless")
	f.String("text-col", "", "Text column name")
	f.Int("text-col-index", 0, "Text column index (0-based)")
	f.String("id-col", "", "Identifier column copied to the output")
	f.String("group-col", "", "Column to aggregate results by")
	f.Int("group-col-index", 0, "Group column index (0-based)")
	f.Int("max-rows", 0, "Stop after this many rows (0 = all)")
	f.Int("batch-size", 0, "Rows per predictor call")
	f.Int("max-len", 0, "Maximum tokens per text")
	f.String("backend", "", "Predictor backend: lexicon, http, command")
	f.String("model", "", "Model name passed to the predictor")
	f.String("endpoint", "", "Inference endpoint for the http backend")
	f.String("command", "", "Scorer executable for the command backend")
	f.StringSlice("arg", nil, "Argument for the scorer command (repeatable)")
	f.String("timeout", "", "Per-batch predictor timeout (e.g. 30s)")
	f.Int("retries", 0, "Retries for failed http requests")
	f.Int("cache-size", 0, "Cache up to N predictions by text (0 disables)")
	f.String("live-path", "", "Live metrics JSON path")
	f.String("history-path", "", "Run history JSONL path")
	f.String("history-db", "", "Run history SQLite database")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: console or json")

	return cmd
}

// applyRunFlags overlays explicitly set flags on cfg
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	strs := map[string]*string{
		"input":        &cfg.Input.Path,
		"output":       &cfg.Output.Path,
		"mode":         &cfg.Input.Mode,
		"text-col":     &cfg.Input.TextCol,
		"id-col":       &cfg.Input.IDCol,
		"group-col":    &cfg.Input.GroupCol,
		"backend":      &cfg.Model.Backend,
		"model":        &cfg.Model.Name,
		"endpoint":     &cfg.Model.Endpoint,
		"command":      &cfg.Model.Command,
		"timeout":      &cfg.Model.Timeout,
		"live-path":    &cfg.Output.LivePath,
		"history-path": &cfg.Output.HistoryPath,
		"history-db":   &cfg.Output.HistoryDB,
		"log-level":    &cfg.Logging.Level,
		"log-format":   &cfg.Logging.Format,
	}
	for name, dst := range strs {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	ints := map[string]*int{
		"max-rows":   &cfg.Input.MaxRows,
		"batch-size": &cfg.Model.BatchSize,
		"max-len":    &cfg.Model.MaxLen,
		"retries":    &cfg.Model.Retries,
		"cache-size": &cfg.Model.CacheSize,
	}
	for name, dst := range ints {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	indexes := map[string]**int{
		"text-col-index":  &cfg.Input.TextColIndex,
		"group-col-index": &cfg.Input.GroupColIndex,
	}
	for name, dst := range indexes {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetInt(name)
		if err != nil {
			return err
		}
		*dst = &v
	}

	if f.Changed("arg") {
		args, err := f.GetStringSlice("arg")
		if err != nil {
			return err
		}
		cfg.Model.Args = args
	}
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if err := applyRunFlags(cmd, app.Config); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if err := app.Init(); err != nil {
		return err
	}

	var extra []ports.SnapshotPublisher
	if !quietFlag {
		extra = append(extra, tui.NewRunProgress(os.Stderr, false))
	}

	svc, err := app.RunService(extra...)
	if err != nil {
		return err
	}

	result, runErr := svc.Run(cmd.Context(), application.RunOptions{
		Settings:  app.Settings(),
		BatchSize: app.Config.Model.BatchSize,
		MaxRows:   app.Config.Input.MaxRows,
	})

	if !quietFlag && result != nil && result.Columns.Text != "" {
		printRunReport(app, result)
	}

	code := application.ExitCode(result, runErr)
	if code == application.ExitOK {
		return nil
	}
	return &exitError{code: code, err: runErr}
}

func printRunReport(app *App, result *application.RunResult) {
	c := app.Config
	now := time.Now()
	snap := domain.NewSnapshot(result.RunID, result.Status, app.Settings(), &result.Stats, now.Add(-result.Runtime), now)

	outputs := map[string]string{"Output": c.Output.Path}
	if c.Output.LivePath != "" {
		outputs["Live"] = c.Output.LivePath
	}
	if c.Output.HistoryPath != "" {
		outputs["History"] = c.Output.HistoryPath
	}
	if len(result.Groups) > 0 {
		jsonPath, _ := tracking.SummaryPaths(c.Output.Path)
		outputs["Summary"] = jsonPath
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, tui.RenderRunResult(snap, outputs))
}
