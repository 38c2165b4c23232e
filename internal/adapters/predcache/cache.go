package predcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Predictor memoizes predictions by input text. Only texts missing from the
// cache are sent to the wrapped predictor, in a single call per batch.
type Predictor struct {
	next  ports.Predictor
	cache *lru.Cache[string, domain.Prediction]
}

// New wraps next with an LRU cache holding up to size predictions.
func New(next ports.Predictor, size int) (*Predictor, error) {
	cache, err := lru.New[string, domain.Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction cache: %w", err)
	}
	return &Predictor{next: next, cache: cache}, nil
}

func (p *Predictor) Predict(ctx context.Context, texts []string) ([]domain.Prediction, error) {
	out := make([]domain.Prediction, len(texts))
	missIdx := make(map[string][]int)
	var misses []string

	for i, text := range texts {
		if pred, ok := p.cache.Get(text); ok {
			out[i] = pred
			continue
		}
		if _, seen := missIdx[text]; !seen {
			misses = append(misses, text)
		}
		missIdx[text] = append(missIdx[text], i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	preds, err := p.next.Predict(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(misses) {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrPredictionMismatch, len(preds), len(misses))
	}

	for j, text := range misses {
		p.cache.Add(text, preds[j])
		for _, i := range missIdx[text] {
			out[i] = preds[j]
		}
	}
	return out, nil
}

// Len returns the number of cached predictions.
func (p *Predictor) Len() int {
	return p.cache.Len()
}

var _ ports.Predictor = (*Predictor)(nil)
