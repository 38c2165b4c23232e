package cli

import (
	"errors"
	"reflect"
	"testing"

	"github.com/devbush/batchinfer/internal/application"
	"github.com/devbush/batchinfer/internal/config"
)

func TestApplyRunFlags_OnlyChangedFlags(t *testing.T) {
	cmd := NewRunCmd()
	if err := cmd.ParseFlags([]string{
		"-i", "data/reviews.csv",
		"--batch-size", "8",
		"--text-col-index", "0",
		"--arg=--fast",
		"--arg=--cpu",
	}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applyRunFlags(cmd, cfg); err != nil {
		t.Fatalf("applyRunFlags() error = %v", err)
	}

	if cfg.Input.Path != "data/reviews.csv" {
		t.Errorf("Input.Path = %q", cfg.Input.Path)
	}
	if cfg.Model.BatchSize != 8 {
		t.Errorf("Model.BatchSize = %d, want 8", cfg.Model.BatchSize)
	}
	if cfg.Input.TextColIndex == nil || *cfg.Input.TextColIndex != 0 {
		t.Errorf("Input.TextColIndex = %v, want 0", cfg.Input.TextColIndex)
	}
	if cfg.Input.GroupColIndex != nil {
		t.Errorf("Input.GroupColIndex = %v, want nil", *cfg.Input.GroupColIndex)
	}
	if want := []string{"--fast", "--cpu"}; !reflect.DeepEqual(cfg.Model.Args, want) {
		t.Errorf("Model.Args = %v, want %v", cfg.Model.Args, want)
	}

	def := config.DefaultConfig()
	if cfg.Output.Path != def.Output.Path {
		t.Errorf("Output.Path = %q, want default %q", cfg.Output.Path, def.Output.Path)
	}
	if cfg.Model.MaxLen != def.Model.MaxLen {
		t.Errorf("Model.MaxLen = %d, want default %d", cfg.Model.MaxLen, def.Model.MaxLen)
	}
}

func TestApplyRunFlags_InvalidValuesCaughtByValidate(t *testing.T) {
	cmd := NewRunCmd()
	if err := cmd.ParseFlags([]string{"--batch-size", "0"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applyRunFlags(cmd, cfg); err != nil {
		t.Fatalf("applyRunFlags() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for batch size 0")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, application.ExitOK},
		{"rows failed", &exitError{code: application.ExitRowsFailed}, application.ExitRowsFailed},
		{"cancelled", &exitError{code: application.ExitCancelled, err: errors.New("context canceled")}, application.ExitCancelled},
		{"plain error", errors.New("boom"), application.ExitConfigOrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"run", "history", "watch", "summary", "config"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
