package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks failures found before any row is processed:
	// invalid settings, unreadable input, unusable columns.
	ErrConfiguration = errors.New("configuration error")

	// Input errors
	ErrInputNotFound         = fmt.Errorf("%w: input file not found", ErrConfiguration)
	ErrEmptyInput            = fmt.Errorf("%w: input CSV is empty", ErrConfiguration)
	ErrTextColumnNotFound    = fmt.Errorf("%w: text column not found", ErrConfiguration)
	ErrColumnIndexOutOfRange = fmt.Errorf("%w: column index out of range", ErrConfiguration)

	// Prediction errors
	ErrPredictionMismatch = errors.New("prediction count does not match batch size")
)

// PredictionError reports that the predictor failed for a whole batch.
type PredictionError struct {
	Rows int
	Err  error
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
