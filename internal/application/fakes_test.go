package application

import (
	"context"
	"io"
	"sync"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

type sliceSource struct {
	cols   domain.Columns
	rows   []domain.Row
	pos    int
	reads  int
	err    error
	closed bool
}

func (s *sliceSource) Columns() domain.Columns { return s.cols }

func (s *sliceSource) Next() (domain.Row, error) {
	if s.pos >= len(s.rows) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	s.reads++
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *sliceSource) Sanitization() domain.Sanitization { return domain.Sanitization{} }

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

type sourceOpener struct {
	src *sliceSource
	err error
}

func (o *sourceOpener) Open(ctx context.Context) (ports.RowSource, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

type memWriter struct {
	records  []domain.OutputRecord
	flushes  int
	writeErr error
	closed   bool
}

func (w *memWriter) Write(rec domain.OutputRecord) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.records = append(w.records, rec)
	return nil
}

func (w *memWriter) Flush() error {
	w.flushes++
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

type writerOpener struct {
	w    *memWriter
	cols domain.Columns
	err  error
}

func (o *writerOpener) Create(cols domain.Columns) (ports.OutputWriter, error) {
	o.cols = cols
	if o.err != nil {
		return nil, o.err
	}
	return o.w, nil
}

// predictFunc adapts a function to ports.Predictor and counts calls.
type predictFunc struct {
	fn    func(call int, texts []string) ([]domain.Prediction, error)
	calls int
	sizes []int
}

func (p *predictFunc) Predict(ctx context.Context, texts []string) ([]domain.Prediction, error) {
	p.calls++
	p.sizes = append(p.sizes, len(texts))
	return p.fn(p.calls, texts)
}

func positiveFor(texts []string) []domain.Prediction {
	out := make([]domain.Prediction, len(texts))
	for i := range texts {
		out[i] = domain.Prediction{Label: "POSITIVE", Score: "0.9"}
	}
	return out
}

type recPublisher struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	err   error
}

func (p *recPublisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return p.err
}

func (p *recPublisher) last() domain.Snapshot {
	return p.snaps[len(p.snaps)-1]
}

type recHistory struct {
	records []domain.Snapshot
	err     error
}

func (h *recHistory) Append(ctx context.Context, rec domain.Snapshot) error {
	h.records = append(h.records, rec)
	return h.err
}

func (h *recHistory) List(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	return h.records, h.err
}

type recSummary struct {
	reports []domain.GroupReport
}

func (s *recSummary) WriteSummary(ctx context.Context, report domain.GroupReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func textRows(n int) []domain.Row {
	rows := make([]domain.Row, n)
	for i := range rows {
		rows[i] = domain.Row{"Text": "row"}
	}
	return rows
}
