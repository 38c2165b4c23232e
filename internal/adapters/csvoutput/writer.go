package csvoutput

import (
	"encoding/csv"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Opener creates output CSV files on a filesystem.
type Opener struct {
	fs   afero.Fs
	path string
}

// NewOpener creates a new output opener
func NewOpener(fs afero.Fs, path string) *Opener {
	return &Opener{fs: fs, path: path}
}

// Create truncates the output file and writes the header
// [id?, <text column>, label, score, error].
func (o *Opener) Create(cols domain.Columns) (ports.OutputWriter, error) {
	if err := o.fs.MkdirAll(filepath.Dir(o.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := o.fs.Create(o.path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{file: f, csv: csv.NewWriter(f), withID: cols.ID != ""}

	header := make([]string, 0, 5)
	if w.withID {
		header = append(header, cols.ID)
	}
	header = append(header, cols.Text, "label", "score", "error")
	if err := w.csv.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write output header: %w", err)
	}
	return w, nil
}

// Writer writes output records as CSV rows.
type Writer struct {
	file   afero.File
	csv    *csv.Writer
	withID bool
}

func (w *Writer) Write(rec domain.OutputRecord) error {
	var row []string
	if w.withID {
		row = []string{rec.ID, rec.Text, rec.Label, rec.Score, rec.Error}
	} else {
		row = []string{rec.Text, rec.Label, rec.Score, rec.Error}
	}
	return w.csv.Write(row)
}

// Flush pushes buffered rows to the file and syncs it.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *Writer) Close() error {
	w.csv.Flush()
	return multierr.Append(w.csv.Error(), w.file.Close())
}

var (
	_ ports.OutputOpener = (*Opener)(nil)
	_ ports.OutputWriter = (*Writer)(nil)
)
