package application

import (
	"context"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// HistoryTotals aggregates counters across listed runs.
type HistoryTotals struct {
	Runs      int
	Completed int
	Processed int
	Failed    int
}

// HistoryService reads past runs for display
type HistoryService struct {
	reader ports.HistoryReader
}

// NewHistoryService creates a new history service
func NewHistoryService(reader ports.HistoryReader) *HistoryService {
	return &HistoryService{reader: reader}
}

// Recent returns up to limit runs, newest first, with their totals.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.Snapshot, HistoryTotals, error) {
	runs, err := s.reader.List(ctx, limit)
	if err != nil {
		return nil, HistoryTotals{}, err
	}

	var totals HistoryTotals
	for _, r := range runs {
		totals.Runs++
		if r.Status == domain.StatusComplete {
			totals.Completed++
		}
		totals.Processed += r.Processed
		totals.Failed += r.Failed
	}
	return runs, totals, nil
}
