package domain

import (
	"slices"
	"time"
)

// MaxErrorSamples bounds the distinct error messages kept in RunStats.
const MaxErrorSamples = 5

// BatchTiming tracks predictor batch durations.
type BatchTiming struct {
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// RunStats holds the counters of a single run.
type RunStats struct {
	RowsSeen      int
	Processed     int
	Failed        int
	ScoreSum      float64
	Positive      int
	Negative      int
	Neutral       int
	ErrorSamples  []string
	Batches       int
	FailedBatches int
	Timing        BatchTiming
	Sanitization  Sanitization
}

// RecordSuccess counts one successfully scored row.
func (s *RunStats) RecordSuccess(sentiment Sentiment, score float64) {
	s.Processed++
	s.ScoreSum += score
	switch sentiment {
	case Positive:
		s.Positive++
	case Negative:
		s.Negative++
	default:
		s.Neutral++
	}
}

// RecordFailure counts rows of a failed batch and keeps the error message
// as a sample while fewer than MaxErrorSamples distinct messages are known.
func (s *RunStats) RecordFailure(rows int, msg string) {
	s.Failed += rows
	s.FailedBatches++
	if len(s.ErrorSamples) < MaxErrorSamples && !slices.Contains(s.ErrorSamples, msg) {
		s.ErrorSamples = append(s.ErrorSamples, msg)
	}
}

// RecordBatch records the duration of one batch, successful or not.
func (s *RunStats) RecordBatch(d time.Duration) {
	s.Batches++
	s.Timing.Total += d
	s.Timing.Last = d
	if s.Batches == 1 || d < s.Timing.Min {
		s.Timing.Min = d
	}
	if d > s.Timing.Max {
		s.Timing.Max = d
	}
}

// AvgScore returns ScoreSum/Processed rounded to six decimals, 0 if nothing was processed.
func (s *RunStats) AvgScore() float64 {
	if s.Processed == 0 {
		return 0
	}
	return Round6(s.ScoreSum / float64(s.Processed))
}

// AvgBatchTime returns the mean batch duration.
func (s *RunStats) AvgBatchTime() time.Duration {
	if s.Batches == 0 {
		return 0
	}
	return s.Timing.Total / time.Duration(s.Batches)
}

// Clone returns a deep copy safe to hand to readers.
func (s *RunStats) Clone() RunStats {
	c := *s
	c.ErrorSamples = slices.Clone(s.ErrorSamples)
	return c
}
