package lexicon

import (
	"context"
	"testing"
)

func TestPredictor_Predict(t *testing.T) {
	tests := []struct {
		text      string
		wantLabel string
		wantScore string
	}{
		{"This coffee is great, I love it!", LabelPositive, "1"},
		{"Terrible. Worst purchase ever.", LabelNegative, "1"},
		{"It arrived on Tuesday.", LabelNeutral, "0.5"},
		{"not good", LabelNegative, "1"},
		{"good but slow", LabelNeutral, "0.5"},
		{"good good bad", LabelPositive, "0.666667"},
	}

	p := NewPredictor(256)
	texts := make([]string, len(tests))
	for i, tt := range tests {
		texts[i] = tt.text
	}

	preds, err := p.Predict(context.Background(), texts)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(preds) != len(texts) {
		t.Fatalf("len(preds) = %d, want %d", len(preds), len(texts))
	}

	for i, tt := range tests {
		if preds[i].Label != tt.wantLabel || string(preds[i].Score) != tt.wantScore {
			t.Errorf("Predict(%q) = %s/%s, want %s/%s", tt.text, preds[i].Label, preds[i].Score, tt.wantLabel, tt.wantScore)
		}
	}
}

func TestPredictor_MaxLen(t *testing.T) {
	p := NewPredictor(2)
	preds, err := p.Predict(context.Background(), []string{"fine okay terrible awful"})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if preds[0].Label != LabelPositive {
		t.Errorf("Label = %s, want POSITIVE (tokens past max_len ignored)", preds[0].Label)
	}
}

func TestPredictor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPredictor(10).Predict(ctx, []string{"x"}); err == nil {
		t.Error("Predict() with cancelled context should fail")
	}
}
