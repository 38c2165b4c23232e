package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Config configures the HTTP predictor
type Config struct {
	Endpoint string
	Model    string
	MaxLen   int
	Timeout  time.Duration // per attempt, 0 disables
	Retries  int
	Backoff  time.Duration // initial retry delay
	Client   *http.Client
}

// Predictor calls a remote inference server with one request per batch.
//
// Request body:  {"model": "...", "inputs": ["..."], "max_length": 256}
// Response body: [{"label": "...", "score": 0.9}, ...] or {"predictions": [...]}
type Predictor struct {
	cfg    Config
	client *http.Client
}

// NewPredictor creates a new HTTP predictor
func NewPredictor(cfg Config) *Predictor {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	return &Predictor{cfg: cfg, client: client}
}

type request struct {
	Model     string   `json:"model,omitempty"`
	Inputs    []string `json:"inputs"`
	MaxLength int      `json:"max_length,omitempty"`
}

func (p *Predictor) Predict(ctx context.Context, texts []string) ([]domain.Prediction, error) {
	body, err := json.Marshal(request{Model: p.cfg.Model, Inputs: texts, MaxLength: p.cfg.MaxLen})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var preds []domain.Prediction
	backoff := retry.WithMaxRetries(uint64(p.cfg.Retries), retry.NewExponential(p.cfg.Backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var attemptErr error
		preds, attemptErr = p.attempt(ctx, body)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}

func (p *Predictor) attempt(ctx context.Context, body []byte) ([]domain.Prediction, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("inference request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to read inference response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("inference server returned HTTP %d: %s", resp.StatusCode, truncate(string(data), 200))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	return decodePredictions(data)
}

func decodePredictions(data []byte) ([]domain.Prediction, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Predictions []domain.Prediction `json:"predictions"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode inference response: %w", err)
		}
		return wrapped.Predictions, nil
	}

	var preds []domain.Prediction
	if err := json.Unmarshal(data, &preds); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return preds, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ ports.Predictor = (*Predictor)(nil)
