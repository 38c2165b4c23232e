package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devbush/batchinfer/internal/domain"
)

// SnapshotLoader reads the current live snapshot.
type SnapshotLoader func() (domain.Snapshot, error)

type tickMsg time.Time

type snapshotMsg struct {
	snap domain.Snapshot
	err  error
}

// WatchModel is the bubbletea model for following a live snapshot file
type WatchModel struct {
	load     SnapshotLoader
	interval time.Duration
	snap     domain.Snapshot
	have     bool
	lastErr  error
	follow   bool // keep watching after a terminal status
	done     bool
}

// NewWatchModel creates a watch view polling load every interval
func NewWatchModel(load SnapshotLoader, interval time.Duration, follow bool) WatchModel {
	return WatchModel{load: load, interval: interval, follow: follow}
}

func (m WatchModel) Init() tea.Cmd {
	return m.fetch
}

func (m WatchModel) fetch() tea.Msg {
	snap, err := m.load()
	return snapshotMsg{snap: snap, err: err}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, m.fetch
	case snapshotMsg:
		if msg.err != nil {
			// Partial or missing files are expected while a run writes.
			m.lastErr = msg.err
			return m, m.tick()
		}
		m.snap, m.have, m.lastErr = msg.snap, true, nil
		if msg.snap.Status.Terminal() && !m.follow {
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("batchinfer watch"))
	b.WriteString("\n\n")

	if !m.have {
		b.WriteString(labelStyle.Render("Waiting for live metrics..."))
		if m.lastErr != nil {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render(m.lastErr.Error()))
		}
		b.WriteString("\n")
		return b.String()
	}

	s := m.snap
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("Status", StatusStyle(s.Status).Render(string(s.Status)))
	row("Run", s.RunID)
	row("Input", s.InputCSV)
	row("Model", s.ModelName)
	if s.MaxRows > 0 {
		done := s.Processed + s.Failed
		row("Progress", fmt.Sprintf("%s %s/%s", renderProgressBar(done, s.MaxRows, 30), FormatCount(done), FormatCount(s.MaxRows)))
	} else {
		row("Rows seen", FormatCount(s.RowsSeen))
	}
	row("Processed", okStyle.Render(FormatCount(s.Processed)))
	failed := FormatCount(s.Failed)
	if s.Failed > 0 {
		failed = errStyle.Render(failed)
	}
	row("Failed", failed)
	row("Sentiment", fmt.Sprintf("+%s / -%s / =%s", FormatCount(s.Positive), FormatCount(s.Negative), FormatCount(s.Neutral)))
	row("Avg score", fmt.Sprintf("%.6f", s.AvgScore))
	row("Batches", fmt.Sprintf("%s (avg %.1fms)", FormatCount(s.Batches), s.AvgBatchMS))
	row("Runtime", FormatRuntime(s.RuntimeS))
	row("Updated", FormatWhen(s.Timestamp))
	for _, msg := range s.ErrorSamples {
		fmt.Fprintf(&b, "%s %s\n", errStyle.Render("✗"), msg)
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// Final returns the last snapshot seen and whether one was loaded
func (m WatchModel) Final() (domain.Snapshot, bool) {
	return m.snap, m.have
}

// RunWatch runs the watch view until the run ends or the user quits
func RunWatch(load SnapshotLoader, interval time.Duration, follow bool) (domain.Snapshot, bool, error) {
	p := tea.NewProgram(NewWatchModel(load, interval, follow))
	final, err := p.Run()
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	snap, ok := final.(WatchModel).Final()
	return snap, ok, nil
}
