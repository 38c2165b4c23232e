package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// UnknownGroup is the group key used for rows with an empty group value.
const UnknownGroup = "(unknown)"

// Row is one sanitized input record keyed by column name.
type Row map[string]string

// Columns describes the resolved column layout of an input source.
type Columns struct {
	Headers []string
	Text    string
	ID      string // empty when rows carry no identifier
	Group   string // empty when grouping is disabled
}

// HasGroup reports whether the group column is present in the headers.
func (c Columns) HasGroup() bool {
	return c.Group != "" && slices.Contains(c.Headers, c.Group)
}

// HasID reports whether the id column is present in the headers.
func (c Columns) HasID() bool {
	return c.ID != "" && slices.Contains(c.Headers, c.ID)
}

// Text returns the trimmed value of the text column.
func (r Row) Text(col string) string {
	return strings.TrimSpace(r[col])
}

// GroupKey returns the trimmed group value, or UnknownGroup when empty.
func (r Row) GroupKey(col string) string {
	key := strings.TrimSpace(r[col])
	if key == "" {
		return UnknownGroup
	}
	return key
}

// Sanitization counts rows the source dropped before they reached a batch.
type Sanitization struct {
	Skipped     int `json:"skipped"`      // every value empty
	MissingText int `json:"missing_text"` // text column empty
}

// OutputRecord is the per-row result written to the output file.
type OutputRecord struct {
	ID    string
	Text  string
	Label string
	Score string
	Error string
}

var compressionExts = []string{".gz", ".zst", ".lz4", ".xz", ".br"}

// DatasetNameFromPath derives a dataset type from an input file name.
// Uploaded files carry a "YYYYMMDD-HHMMSS-" prefix which is stripped.
func DatasetNameFromPath(path string) string {
	base := filepath.Base(path)
	for _, ext := range compressionExts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len(stem) >= 16 && stem[8] == '-' && stem[15] == '-' {
		stem = stem[16:]
	}
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "dataset"
	}
	return stem
}
