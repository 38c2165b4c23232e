package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// ExecutorConfig wires a BatchExecutor to one run.
type ExecutorConfig struct {
	Predictor ports.Predictor
	Writer    ports.OutputWriter
	Publisher ports.SnapshotPublisher
	Columns   domain.Columns
	Stats     *domain.RunStats
	Groups    *domain.GroupAggregator
	// Snapshot renders the current run state with the given status.
	Snapshot func(domain.RunStatus) domain.Snapshot
	Logger   *zap.Logger
	Clock    func() time.Time
}

// BatchExecutor scores one batch at a time and records the outcome.
type BatchExecutor struct {
	predictor ports.Predictor
	writer    ports.OutputWriter
	publisher ports.SnapshotPublisher
	cols      domain.Columns
	stats     *domain.RunStats
	groups    *domain.GroupAggregator
	snapshot  func(domain.RunStatus) domain.Snapshot
	logger    *zap.Logger
	clock     func() time.Time
	useGroups bool
}

// NewBatchExecutor creates an executor for a single run.
func NewBatchExecutor(cfg ExecutorConfig) *BatchExecutor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	groups := cfg.Groups
	if groups == nil {
		groups = domain.NewGroupAggregator()
	}
	return &BatchExecutor{
		predictor: cfg.Predictor,
		writer:    cfg.Writer,
		publisher: cfg.Publisher,
		cols:      cfg.Columns,
		stats:     cfg.Stats,
		groups:    groups,
		snapshot:  cfg.Snapshot,
		logger:    logger.Named("executor"),
		clock:     clock,
		useGroups: cfg.Columns.HasGroup(),
	}
}

// ExecuteBatch calls the predictor once for rows and writes one output
// record per row. A predictor failure marks every row of the batch as
// failed. The only error returned is a failure to write the output file.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}

	start := e.clock()
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Text(e.cols.Text)
	}

	var writeErr error
	preds, err := e.predict(ctx, texts)
	if err != nil {
		e.logger.Error("Batch inference failed",
			zap.Int("rows", len(rows)),
			zap.Int("batch", e.stats.Batches+1),
			zap.Error(err),
		)
		writeErr = e.recordFailure(rows, texts, err)
	} else {
		writeErr = e.recordSuccess(rows, texts, preds)
	}

	e.stats.RecordBatch(e.clock().Sub(start))
	writeErr = multierr.Append(writeErr, e.writer.Flush())

	e.logger.Debug("Batch complete",
		zap.Int("rows", len(rows)),
		zap.Int("processed", e.stats.Processed),
		zap.Int("failed", e.stats.Failed),
		zap.Duration("duration", e.stats.Timing.Last),
	)

	if e.publisher != nil && e.snapshot != nil {
		logPersistenceFailure(e.logger, "live metrics", e.publisher.Publish(context.WithoutCancel(ctx), e.snapshot(domain.StatusRunning)))
	}

	if writeErr != nil {
		return fmt.Errorf("failed to write output: %w", writeErr)
	}
	return nil
}

// predict runs the predictor to completion even if ctx is cancelled, so an
// in-flight batch is never cut short.
func (e *BatchExecutor) predict(ctx context.Context, texts []string) (preds []domain.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.PredictionError{Rows: len(texts), Err: fmt.Errorf("predictor panic: %v", r)}
		}
	}()

	preds, err = e.predictor.Predict(context.WithoutCancel(ctx), texts)
	if err != nil {
		return nil, &domain.PredictionError{Rows: len(texts), Err: err}
	}
	if len(preds) != len(texts) {
		return nil, &domain.PredictionError{
			Rows: len(texts),
			Err:  fmt.Errorf("%w: got %d, want %d", domain.ErrPredictionMismatch, len(preds), len(texts)),
		}
	}
	return preds, nil
}

func (e *BatchExecutor) recordSuccess(rows []domain.Row, texts []string, preds []domain.Prediction) error {
	var err error
	for i, row := range rows {
		pred := preds[i]
		score := pred.Score.Float()
		sentiment := domain.ClassifyLabel(pred.Label)

		err = multierr.Append(err, e.writer.Write(domain.OutputRecord{
			ID:    e.rowID(row),
			Text:  texts[i],
			Label: pred.Label,
			Score: string(pred.Score),
		}))

		e.stats.RecordSuccess(sentiment, score)
		if e.useGroups {
			e.groups.Update(row.GroupKey(e.cols.Group), sentiment, score)
		}
	}
	return err
}

func (e *BatchExecutor) recordFailure(rows []domain.Row, texts []string, cause error) error {
	msg := cause.Error()
	var err error
	for i, row := range rows {
		err = multierr.Append(err, e.writer.Write(domain.OutputRecord{
			ID:    e.rowID(row),
			Text:  texts[i],
			Error: msg,
		}))
	}
	e.stats.RecordFailure(len(rows), msg)
	return err
}

func (e *BatchExecutor) rowID(row domain.Row) string {
	if e.cols.ID == "" {
		return ""
	}
	return row[e.cols.ID]
}
