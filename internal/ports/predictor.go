package ports

import (
	"context"

	"github.com/devbush/batchinfer/internal/domain"
)

// Predictor scores a batch of texts. On success it returns exactly one
// prediction per input text, in input order. Any error fails the whole batch.
type Predictor interface {
	Predict(ctx context.Context, texts []string) ([]domain.Prediction, error)
}
