package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Exit codes reported by a run.
const (
	ExitOK         = 0
	ExitRowsFailed = 1
	ExitConfigOrIO = 2
	ExitCancelled  = 130
)

// DefaultBatchSize is used when RunOptions.BatchSize is not positive.
const DefaultBatchSize = 32

// RunOptions configures a single run.
type RunOptions struct {
	Settings  domain.RunSettings
	BatchSize int
	MaxRows   int // 0 means unlimited
}

// RunResult describes a finished run.
type RunResult struct {
	RunID   string
	Status  domain.RunStatus
	Stats   domain.RunStats
	Groups  []domain.GroupSummary
	Columns domain.Columns
	Runtime time.Duration
}

// RunService orchestrates a batch scoring run from input to summary.
type RunService struct {
	source    ports.RowSourceOpener
	output    ports.OutputOpener
	predictor ports.Predictor
	publisher ports.SnapshotPublisher
	history   ports.HistoryRecorder
	summary   ports.SummaryWriter
	logger    *zap.Logger
	clock     func() time.Time
	newID     func() string
}

// RunServiceOption customizes a RunService.
type RunServiceOption func(*RunService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) RunServiceOption {
	return func(s *RunService) { s.clock = clock }
}

// WithRunID overrides run id generation.
func WithRunID(newID func() string) RunServiceOption {
	return func(s *RunService) { s.newID = newID }
}

// NewRunService creates a new run service. publisher, history and summary may be nil.
func NewRunService(
	source ports.RowSourceOpener,
	output ports.OutputOpener,
	predictor ports.Predictor,
	publisher ports.SnapshotPublisher,
	history ports.HistoryRecorder,
	summary ports.SummaryWriter,
	logger *zap.Logger,
	opts ...RunServiceOption,
) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RunService{
		source:    source,
		output:    output,
		predictor: predictor,
		publisher: publisher,
		history:   history,
		summary:   summary,
		logger:    logger.Named("run"),
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run is the mutable state of one run.
type run struct {
	id        string
	settings  domain.RunSettings
	stats     *domain.RunStats
	groups    *domain.GroupAggregator
	startedAt time.Time
	clock     func() time.Time
	err       error
}

func (r *run) snapshot(status domain.RunStatus) domain.Snapshot {
	snap := domain.NewSnapshot(r.id, status, r.settings, r.stats, r.startedAt, r.clock())
	if r.err != nil {
		snap.Error = r.err.Error()
	}
	return snap
}

// Run executes one run. The returned error is non-nil when the run failed;
// the result is returned whenever a run id was assigned.
func (s *RunService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	r := &run{
		id:        s.newID(),
		settings:  opts.Settings,
		stats:     &domain.RunStats{},
		groups:    domain.NewGroupAggregator(),
		startedAt: s.clock(),
		clock:     s.clock,
	}
	// Terminal writes must happen even after cancellation.
	pctx := context.WithoutCancel(ctx)
	logger := s.logger.With(zap.String("run_id", r.id))

	logger.Info("Starting job",
		zap.String("input", r.settings.InputCSV),
		zap.String("output", r.settings.OutputCSV),
		zap.String("model", r.settings.ModelName),
		zap.Int("batch_size", opts.BatchSize),
		zap.Int("max_rows", opts.MaxRows),
	)
	s.publish(pctx, logger, r.snapshot(domain.StatusStarting))

	src, err := s.source.Open(ctx)
	if err != nil {
		return s.abort(pctx, logger, r, fmt.Errorf("failed to open input: %w", err))
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close input", zap.Error(err))
		}
	}()

	cols := src.Columns()
	r.settings.TextCol = cols.Text
	r.settings.IDCol = cols.ID
	r.settings.GroupCol = ""
	if cols.HasGroup() {
		r.settings.GroupCol = cols.Group
	}

	writer, err := s.output.Create(cols)
	if err != nil {
		return s.abort(pctx, logger, r, fmt.Errorf("%w: failed to create output: %v", domain.ErrConfiguration, err))
	}

	s.publish(pctx, logger, r.snapshot(domain.StatusRunning))

	executor := NewBatchExecutor(ExecutorConfig{
		Predictor: s.predictor,
		Writer:    writer,
		Publisher: s.publisher,
		Columns:   cols,
		Stats:     r.stats,
		Groups:    r.groups,
		Snapshot:  r.snapshot,
		Logger:    logger,
		Clock:     s.clock,
	})

	status, runErr := s.process(ctx, logger, src, executor, r, opts)
	if err := writer.Close(); err != nil && runErr == nil {
		status, runErr = domain.StatusFailed, fmt.Errorf("failed to close output: %w", err)
	}
	r.stats.Sanitization = src.Sanitization()
	r.err = runErr

	result := s.finish(pctx, logger, r, cols, status)
	return result, runErr
}

// process streams rows into batches until the input ends, the row cap is
// reached, or ctx is cancelled at a batch boundary.
func (s *RunService) process(ctx context.Context, logger *zap.Logger, src ports.RowSource, executor *BatchExecutor, r *run, opts RunOptions) (domain.RunStatus, error) {
	batch := make([]domain.Row, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		r.stats.Sanitization = src.Sanitization()
		err := executor.ExecuteBatch(ctx, batch)
		batch = batch[:0]
		return err
	}

	for {
		if len(batch) == 0 && ctx.Err() != nil {
			logger.Warn("Run cancelled", zap.Int("rows_seen", r.stats.RowsSeen))
			return domain.StatusCancelled, nil
		}
		if opts.MaxRows > 0 && r.stats.RowsSeen >= opts.MaxRows {
			logger.Info("Row limit reached", zap.Int("max_rows", opts.MaxRows))
			break
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr := fmt.Errorf("failed to read input: %w", err)
			if ferr := flush(); ferr != nil {
				return domain.StatusFailed, ferr
			}
			return domain.StatusFailed, readErr
		}

		batch = append(batch, row)
		r.stats.RowsSeen++
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return domain.StatusFailed, err
			}
		}
	}

	if err := flush(); err != nil {
		return domain.StatusFailed, err
	}
	return domain.StatusComplete, nil
}

// abort ends a run that failed before any row was read.
func (s *RunService) abort(ctx context.Context, logger *zap.Logger, r *run, err error) (*RunResult, error) {
	r.err = err
	logger.Error("Job failed", zap.Error(err))
	s.publish(ctx, logger, r.snapshot(domain.StatusFailed))
	return &RunResult{
		RunID:   r.id,
		Status:  domain.StatusFailed,
		Stats:   r.stats.Clone(),
		Runtime: r.clock().Sub(r.startedAt),
	}, err
}

func (s *RunService) finish(ctx context.Context, logger *zap.Logger, r *run, cols domain.Columns, status domain.RunStatus) *RunResult {
	final := r.snapshot(status)
	s.publish(ctx, logger, final)

	if s.history != nil {
		logPersistenceFailure(logger, "run history", s.history.Append(ctx, final))
	}

	groups := r.groups.Summarize()
	if s.summary != nil && len(groups) > 0 {
		logPersistenceFailure(logger, "group summary", s.summary.WriteSummary(ctx, domain.GroupReport{
			DatasetType: r.settings.DatasetType,
			GroupCol:    r.settings.GroupCol,
			Groups:      groups,
		}))
	}

	fields := []zap.Field{
		zap.String("status", string(status)),
		zap.Int("rows_seen", r.stats.RowsSeen),
		zap.Int("processed", r.stats.Processed),
		zap.Int("failed", r.stats.Failed),
		zap.Float64("avg_score", r.stats.AvgScore()),
		zap.Float64("runtime_s", final.RuntimeS),
	}
	if r.err != nil {
		logger.Error("Job failed", append(fields, zap.Error(r.err))...)
	} else {
		logger.Info("Job complete", fields...)
	}

	return &RunResult{
		RunID:   r.id,
		Status:  status,
		Stats:   r.stats.Clone(),
		Groups:  groups,
		Columns: cols,
		Runtime: r.clock().Sub(r.startedAt),
	}
}

func (s *RunService) publish(ctx context.Context, logger *zap.Logger, snap domain.Snapshot) {
	if s.publisher == nil {
		return
	}
	logPersistenceFailure(logger, "live metrics", s.publisher.Publish(ctx, snap))
}

// ExitCode maps the outcome of Run to a process exit code.
func ExitCode(result *RunResult, err error) int {
	switch {
	case result != nil && result.Status == domain.StatusCancelled:
		return ExitCancelled
	case err != nil:
		return ExitConfigOrIO
	case result != nil && result.Stats.Failed > 0:
		return ExitRowsFailed
	default:
		return ExitOK
	}
}
