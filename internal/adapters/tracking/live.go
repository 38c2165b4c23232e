package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// LivePublisher overwrites a JSON snapshot file atomically. Readers never
// observe a partially written document.
type LivePublisher struct {
	fs   afero.Fs
	path string
}

// NewLivePublisher creates a new live snapshot publisher
func NewLivePublisher(fs afero.Fs, path string) *LivePublisher {
	return &LivePublisher{fs: fs, path: path}
}

func (p *LivePublisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return writeAtomic(p.fs, p.path, data)
}

// writeAtomic writes data to path.tmp, syncs it and renames it over path.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			fs.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	success = true
	return nil
}

// ReadSnapshot loads the live snapshot at path.
func ReadSnapshot(fs afero.Fs, path string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}

var _ ports.SnapshotPublisher = (*LivePublisher)(nil)
