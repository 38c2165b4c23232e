package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderProgressBar creates a text progress bar like [=====>    ]
// current=0, total=10, width=10 → [          ]
// current=5, total=10, width=10 → [=====>    ]
// current=10, total=10, width=10 → [==========]
// current=3, total=10, width=10 → [==>       ]
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat(" ", width) + "]"
	}

	var bar strings.Builder
	bar.WriteString("[")

	switch {
	case current >= total:
		bar.WriteString(strings.Repeat("=", width))
	case current == 0:
		bar.WriteString(strings.Repeat(" ", width))
	default:
		ratio := float64(current) / float64(total)
		arrowPos := int(ratio*float64(width) + 0.5)
		arrowPos = max(1, min(arrowPos, width))

		// the head sits after the filled part once half is done
		equals := arrowPos - 1
		if ratio >= 0.5 {
			equals = arrowPos
		}
		equals = max(0, min(equals, width-1))
		spaces := max(0, width-equals-1)

		bar.WriteString(strings.Repeat("=", equals))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", spaces))
	}

	bar.WriteString("]")
	return bar.String()
}

// RunProgress renders one status line per published snapshot. It is used
// alongside the live metrics file so an interactive run shows progress.
type RunProgress struct {
	out        io.Writer
	quiet      bool
	mu         sync.Mutex
	spinnerIdx int
	rendered   bool
}

// NewRunProgress creates a new progress display
func NewRunProgress(out io.Writer, quiet bool) *RunProgress {
	return &RunProgress{out: out, quiet: quiet}
}

func (p *RunProgress) Publish(ctx context.Context, snap domain.Snapshot) error {
	if p.quiet {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	line := p.line(snap)
	if snap.Status.Terminal() {
		if p.rendered {
			_, err := fmt.Fprintf(p.out, "\r\033[K%s\n", line)
			return err
		}
		_, err := fmt.Fprintln(p.out, line)
		return err
	}

	p.rendered = true
	p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
	_, err := fmt.Fprintf(p.out, "\r\033[K%s", line)
	return err
}

func (p *RunProgress) line(snap domain.Snapshot) string {
	var icon string
	switch snap.Status {
	case domain.StatusComplete:
		icon = okStyle.Render("✓")
	case domain.StatusFailed:
		icon = errStyle.Render("✗")
	case domain.StatusCancelled:
		icon = warnStyle.Render("■")
	default:
		icon = spinnerFrames[p.spinnerIdx]
	}

	done := snap.Processed + snap.Failed
	progress := FormatCount(snap.RowsSeen) + " rows"
	if snap.MaxRows > 0 {
		progress = fmt.Sprintf("%s %s/%s", renderProgressBar(done, snap.MaxRows, 20), FormatCount(done), FormatCount(snap.MaxRows))
	}

	parts := []string{
		icon,
		StatusStyle(snap.Status).Render(string(snap.Status)),
		progress,
		okStyle.Render(fmt.Sprintf("ok %s", FormatCount(snap.Processed))),
	}
	if snap.Failed > 0 {
		parts = append(parts, errStyle.Render(fmt.Sprintf("failed %s", FormatCount(snap.Failed))))
	}
	parts = append(parts,
		labelStyle.Render(fmt.Sprintf("avg %.4f", snap.AvgScore)),
		labelStyle.Render(FormatRuntime(snap.RuntimeS)),
	)
	return strings.Join(parts, "  ")
}

var _ ports.SnapshotPublisher = (*RunProgress)(nil)
