package domain

import (
	"math"
	"time"
)

// RunStatus is the lifecycle state reported in snapshots.
type RunStatus string

const (
	StatusStarting  RunStatus = "starting"
	StatusRunning   RunStatus = "running"
	StatusComplete  RunStatus = "complete"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether no further snapshots follow this status.
func (s RunStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusCancelled
}

// RunSettings is the configuration echoed into every snapshot.
type RunSettings struct {
	InputCSV    string `json:"input_csv"`
	OutputCSV   string `json:"output_csv"`
	TextCol     string `json:"text_col"`
	IDCol       string `json:"id_col,omitempty"`
	GroupCol    string `json:"group_col"`
	DatasetType string `json:"dataset_type"`
	ModelName   string `json:"model_name"`
	Backend     string `json:"backend"`
	BatchSize   int    `json:"batch_size"`
	MaxLen      int    `json:"max_len"`
	MaxRows     int    `json:"max_rows,omitempty"`
}

// Snapshot is the live progress document. The terminal snapshot of a run
// doubles as its run history record.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	StartedAt time.Time `json:"started_at"`
	RunSettings

	RowsSeen      int      `json:"rows_seen"`
	Processed     int      `json:"processed"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped"`
	Invalid       int      `json:"invalid"`
	ErrorSamples  []string `json:"error_samples"`
	AvgScore      float64  `json:"avg_score"`
	Positive      int      `json:"positive"`
	Negative      int      `json:"negative"`
	Neutral       int      `json:"neutral"`
	Batches       int      `json:"batches"`
	FailedBatches int      `json:"failed_batches"`
	AvgBatchMS    float64  `json:"avg_batch_ms"`
	LastBatchMS   float64  `json:"last_batch_ms"`
	RuntimeS      float64  `json:"runtime_s"`
	Error         string   `json:"error,omitempty"`
}

// NewSnapshot builds a snapshot from the current counters.
func NewSnapshot(runID string, status RunStatus, settings RunSettings, stats *RunStats, startedAt, now time.Time) Snapshot {
	samples := make([]string, len(stats.ErrorSamples))
	copy(samples, stats.ErrorSamples)
	return Snapshot{
		RunID:         runID,
		Status:        status,
		Timestamp:     now.UTC(),
		StartedAt:     startedAt.UTC(),
		RunSettings:   settings,
		RowsSeen:      stats.RowsSeen,
		Processed:     stats.Processed,
		Failed:        stats.Failed,
		Skipped:       stats.Sanitization.Skipped,
		Invalid:       stats.Sanitization.MissingText,
		ErrorSamples:  samples,
		AvgScore:      stats.AvgScore(),
		Positive:      stats.Positive,
		Negative:      stats.Negative,
		Neutral:       stats.Neutral,
		Batches:       stats.Batches,
		FailedBatches: stats.FailedBatches,
		AvgBatchMS:    millis(stats.AvgBatchTime()),
		LastBatchMS:   millis(stats.Timing.Last),
		RuntimeS:      Round3(now.Sub(startedAt).Seconds()),
	}
}

func millis(d time.Duration) float64 {
	return Round3(float64(d) / float64(time.Millisecond))
}

// Round3 rounds to three decimal places.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
