package scorecmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Config configures the command predictor
type Config struct {
	Command string
	Args    []string
	Model   string
	MaxLen  int
	Timeout time.Duration
}

// Predictor runs an external scorer once per batch. The request is written
// to stdin as {"model": "...", "max_length": n, "inputs": [...]} and stdout
// must hold a JSON array of {"label", "score"} objects.
type Predictor struct {
	cfg Config
}

// NewPredictor creates a new command predictor
func NewPredictor(cfg Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// IsAvailable checks if the scorer binary can be found
func (p *Predictor) IsAvailable() bool {
	_, err := exec.LookPath(p.cfg.Command)
	return err == nil
}

func (p *Predictor) Predict(ctx context.Context, texts []string) ([]domain.Prediction, error) {
	bin, err := exec.LookPath(p.cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("scorer not found: %s", p.cfg.Command)
	}

	input, err := json.Marshal(struct {
		Model     string   `json:"model,omitempty"`
		MaxLength int      `json:"max_length,omitempty"`
		Inputs    []string `json:"inputs"`
	}{p.cfg.Model, p.cfg.MaxLen, texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scorer input: %w", err)
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, p.cfg.Args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("scorer failed: %w: %s", err, lastLine(msg))
		}
		return nil, fmt.Errorf("scorer failed: %w", err)
	}

	var preds []domain.Prediction
	if err := json.Unmarshal(stdout.Bytes(), &preds); err != nil {
		return nil, fmt.Errorf("failed to parse scorer output: %w", err)
	}
	return preds, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

var _ ports.Predictor = (*Predictor)(nil)
