package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// SummaryPaths returns the JSON and CSV summary paths next to outputPath.
func SummaryPaths(outputPath string) (jsonPath, csvPath string) {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return base + "_group_summary.json", base + "_group_summary.csv"
}

// SummaryWriter writes the group summary as JSON and CSV.
type SummaryWriter struct {
	fs         afero.Fs
	outputPath string
}

// NewSummaryWriter creates a writer for summaries of outputPath.
func NewSummaryWriter(fs afero.Fs, outputPath string) *SummaryWriter {
	return &SummaryWriter{fs: fs, outputPath: outputPath}
}

func (w *SummaryWriter) WriteSummary(ctx context.Context, report domain.GroupReport) error {
	if len(report.Groups) == 0 {
		return nil
	}
	jsonPath, csvPath := SummaryPaths(w.outputPath)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal group summary: %w", err)
	}
	if err := writeAtomic(w.fs, jsonPath, data); err != nil {
		return err
	}

	var rows bytes.Buffer
	if err := gocsv.Marshal(&report.Groups, &rows); err != nil {
		return fmt.Errorf("failed to encode group summary CSV: %w", err)
	}
	return writeAtomic(w.fs, csvPath, rows.Bytes())
}

// ReadSummary loads a JSON group summary.
func ReadSummary(fs afero.Fs, path string) (domain.GroupReport, error) {
	var report domain.GroupReport
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return report, err
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("failed to parse group summary: %w", err)
	}
	return report, nil
}

var _ ports.SummaryWriter = (*SummaryWriter)(nil)
