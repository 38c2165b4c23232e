package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/devbush/batchinfer/internal/domain"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		current, total int
		width          int
		want           string
	}{
		{0, 10, 10, "[          ]"},
		{5, 10, 10, "[=====>    ]"},
		{10, 10, 10, "[==========]"},
		{3, 10, 10, "[==>       ]"},
		{4, 0, 4, "[    ]"},
	}

	for _, tt := range tests {
		got := renderProgressBar(tt.current, tt.total, tt.width)
		if got != tt.want {
			t.Errorf("renderProgressBar(%d, %d, %d) = %q, want %q",
				tt.current, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestRunProgress_Publish(t *testing.T) {
	var buf bytes.Buffer
	p := NewRunProgress(&buf, false)
	ctx := context.Background()

	if err := p.Publish(ctx, domain.Snapshot{Status: domain.StatusRunning, RowsSeen: 2, Processed: 2}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := p.Publish(ctx, domain.Snapshot{Status: domain.StatusComplete, RowsSeen: 4, Processed: 3, Failed: 1}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "running") || !strings.Contains(out, "complete") {
		t.Errorf("output missing statuses: %q", out)
	}
	if !strings.Contains(out, "failed 1") {
		t.Errorf("output missing failed count: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("terminal snapshot should end the line")
	}
}

func TestRunProgress_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewRunProgress(&buf, true)
	_ = p.Publish(context.Background(), domain.Snapshot{Status: domain.StatusComplete})
	if buf.Len() != 0 {
		t.Errorf("quiet progress wrote %q", buf.String())
	}
}
