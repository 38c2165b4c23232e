package tracking

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// HistoryFile is an append-only JSON Lines run history.
type HistoryFile struct {
	fs   afero.Fs
	path string
}

// NewHistoryFile creates a new JSONL history
func NewHistoryFile(fs afero.Fs, path string) *HistoryFile {
	return &HistoryFile{fs: fs, path: path}
}

func (h *HistoryFile) Append(ctx context.Context, rec domain.Snapshot) error {
	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	line = append(line, '\n')

	f, err := h.fs.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append history: %w", err)
	}
	return f.Close()
}

// List returns up to limit records, newest first. Lines that fail to parse
// are skipped. A missing file yields no records.
func (h *HistoryFile) List(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	data, err := afero.ReadFile(h.fs, h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var records []domain.Snapshot
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec domain.Snapshot
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}

	slices.Reverse(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var (
	_ ports.HistoryRecorder = (*HistoryFile)(nil)
	_ ports.HistoryReader   = (*HistoryFile)(nil)
)
