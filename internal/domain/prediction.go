package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Sentiment is the coarse class derived from a prediction label.
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// ClassifyLabel maps a free-form label to a sentiment by case-insensitive
// substring: "pos" wins over "neg", anything else is neutral.
func ClassifyLabel(label string) Sentiment {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "pos"):
		return Positive
	case strings.Contains(l, "neg"):
		return Negative
	default:
		return Neutral
	}
}

// Score is a score as reported by a predictor. The raw text is kept for the
// output file; Float coerces it for statistics.
type Score string

// ScoreOf formats a float score.
func ScoreOf(f float64) Score {
	return Score(strconv.FormatFloat(f, 'f', -1, 64))
}

// Float returns the numeric score, or 0 when it is missing or not a finite number.
func (s Score) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// UnmarshalJSON accepts numbers, strings and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Score(str)
		return nil
	}
	*s = Score(data)
	return nil
}

// Prediction is the predictor's result for one text.
type Prediction struct {
	Label string `json:"label"`
	Score Score  `json:"score"`
}

// Round6 rounds to six decimal places.
func Round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
