package application

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// logPersistenceFailure records a failed best-effort write. Such failures
// never change the outcome of a run.
func logPersistenceFailure(logger *zap.Logger, what string, err error) {
	if err == nil {
		return
	}
	logger.Warn("Failed to write "+what, zap.Error(err))
}

// MultiPublisher fans a snapshot out to several publishers.
type MultiPublisher []ports.SnapshotPublisher

func (m MultiPublisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Publish(ctx, snap))
	}
	return err
}

// MultiRecorder appends a history record to several recorders.
type MultiRecorder []ports.HistoryRecorder

func (m MultiRecorder) Append(ctx context.Context, rec domain.Snapshot) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Append(ctx, rec))
	}
	return err
}

var (
	_ ports.SnapshotPublisher = MultiPublisher(nil)
	_ ports.HistoryRecorder   = MultiRecorder(nil)
)
