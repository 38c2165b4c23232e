package ports

import "github.com/devbush/batchinfer/internal/domain"

// OutputWriter persists one record per processed row.
type OutputWriter interface {
	Write(rec domain.OutputRecord) error

	// Flush makes everything written so far durable.
	Flush() error

	Close() error
}

// OutputOpener creates the output file once the input columns are known.
type OutputOpener interface {
	Create(cols domain.Columns) (OutputWriter, error)
}
