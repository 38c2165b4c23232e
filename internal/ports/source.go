package ports

import (
	"context"

	"github.com/devbush/batchinfer/internal/domain"
)

// RowSource yields sanitized input rows in file order.
type RowSource interface {
	// Columns returns the resolved column layout.
	Columns() domain.Columns

	// Next returns the next row, or io.EOF when the input is exhausted.
	Next() (domain.Row, error)

	// Sanitization returns how many rows were dropped so far.
	Sanitization() domain.Sanitization

	Close() error
}

// RowSourceOpener opens the configured input.
type RowSourceOpener interface {
	Open(ctx context.Context) (RowSource, error)
}
