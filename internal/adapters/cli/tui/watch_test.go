package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devbush/batchinfer/internal/domain"
)

func TestWatchModel_Update(t *testing.T) {
	snaps := []domain.Snapshot{
		{Status: domain.StatusRunning, Processed: 2},
		{Status: domain.StatusComplete, Processed: 4},
	}
	i := 0
	load := func() (domain.Snapshot, error) {
		s := snaps[i]
		i++
		return s, nil
	}

	m := NewWatchModel(load, time.Millisecond, false)

	msg := m.Init()()
	next, cmd := m.Update(msg)
	m = next.(WatchModel)
	if cmd == nil {
		t.Fatal("running snapshot should schedule another tick")
	}
	if !strings.Contains(m.View(), "running") {
		t.Errorf("View() missing status:\n%s", m.View())
	}

	next, _ = m.Update(tickMsg(time.Now()))
	m = next.(WatchModel)
	next, _ = m.Update(m.fetch())
	m = next.(WatchModel)

	if !m.done {
		t.Error("terminal snapshot should end the watch")
	}
	snap, ok := m.Final()
	if !ok || snap.Processed != 4 {
		t.Errorf("Final() = %+v, %v", snap, ok)
	}
}

func TestWatchModel_LoadErrorKeepsWaiting(t *testing.T) {
	m := NewWatchModel(func() (domain.Snapshot, error) {
		return domain.Snapshot{}, errors.New("file does not exist")
	}, time.Millisecond, false)

	next, cmd := m.Update(m.fetch())
	m = next.(WatchModel)
	if cmd == nil || m.done {
		t.Error("load errors should keep polling")
	}
	if !strings.Contains(m.View(), "Waiting") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestWatchModel_Quit(t *testing.T) {
	m := NewWatchModel(func() (domain.Snapshot, error) { return domain.Snapshot{}, nil }, time.Second, true)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !next.(WatchModel).done {
		t.Error("q should quit")
	}
}
