package tui

import (
	"strings"
	"testing"

	"github.com/devbush/batchinfer/internal/domain"
)

func TestRenderHistory(t *testing.T) {
	if got := RenderHistory(nil); !strings.Contains(got, "No runs") {
		t.Errorf("RenderHistory(nil) = %q", got)
	}

	out := RenderHistory([]domain.Snapshot{
		{RunID: "0123456789abcdef", Status: domain.StatusComplete, RunSettings: domain.RunSettings{DatasetType: "reviews"}, Processed: 1234},
	})
	for _, want := range []string{"01234567", "complete", "reviews", "1,234"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderHistory() missing %q in\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789") {
		t.Error("RenderHistory() should shorten run ids")
	}
}

func TestRenderSummary_Limit(t *testing.T) {
	report := domain.GroupReport{
		DatasetType: "reviews",
		GroupCol:    "ProductId",
		Groups: []domain.GroupSummary{
			{Group: "P1", Total: 3},
			{Group: "P2", Total: 2},
			{Group: "P3", Total: 1},
		},
	}

	out := RenderSummary(report, 2)
	if !strings.Contains(out, "P1") || !strings.Contains(out, "P2") {
		t.Errorf("RenderSummary() missing groups:\n%s", out)
	}
	if strings.Contains(out, "P3") {
		t.Errorf("RenderSummary() should hide groups past the limit:\n%s", out)
	}
	if !strings.Contains(out, "1 more groups") {
		t.Errorf("RenderSummary() missing hidden count:\n%s", out)
	}
}

func TestRenderRunResult(t *testing.T) {
	out := RenderRunResult(domain.Snapshot{
		RunID:        "abc",
		Status:       domain.StatusComplete,
		Processed:    3,
		Failed:       2,
		ErrorSamples: []string{"boom"},
	}, map[string]string{"Output": "out.csv"})

	for _, want := range []string{"abc", "complete", "boom", "out.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderRunResult() missing %q in\n%s", want, out)
		}
	}
}
