package lexicon

import (
	"context"
	"strings"
	"unicode"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Labels reported by the lexicon predictor
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

var positiveWords = wordSet(`good great excellent amazing awesome love loved loves lovely like liked
	best nice fantastic wonderful perfect happy delicious tasty recommend recommended favorite
	enjoy enjoyed fresh fast easy beautiful brilliant superb pleasant satisfied glad fun fine
	helpful worth quality smooth impressive outstanding solid yummy thanks thank`)

var negativeWords = wordSet(`bad terrible awful horrible worst hate hated hates poor disappointing
	disappointed disgusting nasty broken waste wasted slow stale bland gross useless refund
	angry sad annoying boring cheap fake rude dirty expensive problem problems sick unhappy
	mediocre wrong fail failed failure return returned never sucks`)

var negations = wordSet(`not no never isn't wasn't don't doesn't didn't can't couldn't won't
	wouldn't shouldn't aren't hardly`)

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// Predictor is an offline keyword sentiment scorer. It needs no model
// files and is deterministic, which makes it useful for smoke runs.
type Predictor struct {
	maxLen int
}

// NewPredictor creates a lexicon predictor considering at most maxLen tokens per text.
func NewPredictor(maxLen int) *Predictor {
	return &Predictor{maxLen: maxLen}
}

func (p *Predictor) Predict(ctx context.Context, texts []string) ([]domain.Prediction, error) {
	out := make([]domain.Prediction, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.score(text)
	}
	return out, nil
}

func (p *Predictor) score(text string) domain.Prediction {
	tokens := tokenize(text)
	if p.maxLen > 0 && len(tokens) > p.maxLen {
		tokens = tokens[:p.maxLen]
	}

	var pos, neg int
	negate := false
	for _, tok := range tokens {
		if _, ok := negations[tok]; ok {
			negate = true
			continue
		}
		_, isPos := positiveWords[tok]
		_, isNeg := negativeWords[tok]
		if negate {
			isPos, isNeg = isNeg, isPos
			negate = false
		}
		if isPos {
			pos++
		}
		if isNeg {
			neg++
		}
	}

	if pos == neg {
		return domain.Prediction{Label: LabelNeutral, Score: domain.ScoreOf(0.5)}
	}
	diff := pos - neg
	label := LabelPositive
	if diff < 0 {
		label = LabelNegative
		diff = -diff
	}
	conf := 0.5 + 0.5*float64(diff)/float64(pos+neg)
	return domain.Prediction{Label: label, Score: domain.ScoreOf(domain.Round6(conf))}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

var _ ports.Predictor = (*Predictor)(nil)
