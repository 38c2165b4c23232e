package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	dataset_type TEXT,
	processed INTEGER,
	failed INTEGER,
	started_at DATETIME,
	finished_at DATETIME,
	record TEXT NOT NULL
);
`

// History stores run records in a SQLite database.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Append(ctx context.Context, rec domain.Snapshot) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, status, dataset_type, processed, failed, started_at, finished_at, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, string(rec.Status), rec.DatasetType, rec.Processed, rec.Failed,
		rec.StartedAt.UTC(), rec.Timestamp.UTC(), string(data))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// List returns up to limit runs ordered by finish time, newest first.
func (h *History) List(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx, `SELECT record FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []domain.Snapshot
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}

var (
	_ ports.HistoryRecorder = (*History)(nil)
	_ ports.HistoryReader   = (*History)(nil)
)
