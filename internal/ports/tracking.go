package ports

import (
	"context"

	"github.com/devbush/batchinfer/internal/domain"
)

// SnapshotPublisher overwrites the live progress document.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// HistoryRecorder appends one terminal record per run.
type HistoryRecorder interface {
	Append(ctx context.Context, rec domain.Snapshot) error
}

// HistoryReader lists past runs, newest first.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]domain.Snapshot, error)
}

// SummaryWriter persists the end-of-run group summary.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, report domain.GroupReport) error
}
