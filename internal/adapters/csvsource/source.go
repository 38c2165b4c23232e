package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/devbush/batchinfer/internal/domain"
	"github.com/devbush/batchinfer/internal/ports"
)

// Modes
const (
	ModeHeader     = "header"
	ModeHeaderless = "headerless"
)

// textFallbacks are tried in order when the configured text column is absent.
var textFallbacks = []string{"text", "Text", "review_text", "review", "content"}

// Options selects the input file and its columns.
type Options struct {
	Path          string
	Mode          string
	TextCol       string
	TextColIndex  *int
	IDCol         string
	GroupCol      string
	GroupColIndex *int
}

// Opener opens CSV row sources from a filesystem.
type Opener struct {
	fs     afero.Fs
	opts   Options
	logger *zap.Logger
}

// NewOpener creates a new CSV opener
func NewOpener(fs afero.Fs, opts Options, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = ModeHeader
	}
	return &Opener{fs: fs, opts: opts, logger: logger.Named("csvsource")}
}

// Open reads the header (or first row) and resolves the columns.
func (o *Opener) Open(ctx context.Context) (ports.RowSource, error) {
	f, err := o.fs.Open(o.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInputNotFound, o.opts.Path)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", domain.ErrConfiguration, o.opts.Path, err)
	}

	src, err := o.open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

func (o *Opener) open(f afero.File) (*Source, error) {
	raw, closeDecoder, err := decompress(f, o.opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress %s: %v", domain.ErrConfiguration, o.opts.Path, err)
	}

	text, latin1, err := decodeText(raw)
	if err != nil {
		closeDecoder()
		return nil, fmt.Errorf("%w: failed to read %s: %v", domain.ErrConfiguration, o.opts.Path, err)
	}
	if latin1 {
		o.logger.Warn("UTF-8 decode failed; reading as latin-1", zap.String("input_csv", o.opts.Path))
	}

	r := csv.NewReader(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		closeDecoder()
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyInput, o.opts.Path)
	}
	if err != nil {
		closeDecoder()
		return nil, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrConfiguration, o.opts.Path, err)
	}

	s := &Source{
		reader:  r,
		closers: []func() error{closeDecoder, f.Close},
	}

	switch o.opts.Mode {
	case ModeHeader:
		s.headers = make([]string, len(first))
		for i, h := range first {
			s.headers[i] = strings.TrimSpace(h)
		}
	case ModeHeaderless:
		s.headers = make([]string, len(first))
		for i := range first {
			s.headers[i] = fmt.Sprintf("col_%d", i)
		}
		s.pending = first
	default:
		closeDecoder()
		return nil, fmt.Errorf("%w: unknown CSV mode %q", domain.ErrConfiguration, o.opts.Mode)
	}

	cols, err := o.resolveColumns(s.headers)
	if err != nil {
		closeDecoder()
		return nil, err
	}
	s.cols = cols

	o.logger.Debug("Input opened",
		zap.String("input_csv", o.opts.Path),
		zap.Strings("headers", s.headers),
		zap.String("text_col", cols.Text),
		zap.String("group_col", cols.Group),
	)
	return s, nil
}

func (o *Opener) resolveColumns(headers []string) (domain.Columns, error) {
	cols := domain.Columns{Headers: headers, ID: o.opts.IDCol}

	if o.opts.GroupColIndex != nil {
		idx := *o.opts.GroupColIndex
		if idx < 0 || idx >= len(headers) {
			return cols, fmt.Errorf("%w: GROUP_COL_INDEX %d with %d columns", domain.ErrColumnIndexOutOfRange, idx, len(headers))
		}
		cols.Group = headers[idx]
	}

	switch {
	case o.opts.TextColIndex != nil:
		idx := *o.opts.TextColIndex
		if idx < 0 || idx >= len(headers) {
			return cols, fmt.Errorf("%w: TEXT_COL_INDEX %d with %d columns", domain.ErrColumnIndexOutOfRange, idx, len(headers))
		}
		cols.Text = headers[idx]
	case o.opts.Mode == ModeHeaderless:
		return cols, fmt.Errorf("%w: headerless CSV requires TEXT_COL_INDEX", domain.ErrConfiguration)
	case slices.Contains(headers, o.opts.TextCol):
		cols.Text = o.opts.TextCol
	default:
		for _, candidate := range textFallbacks {
			if slices.Contains(headers, candidate) {
				o.logger.Info("Using fallback text column",
					zap.String("configured", o.opts.TextCol),
					zap.String("text_col", candidate),
				)
				cols.Text = candidate
				break
			}
		}
		if cols.Text == "" {
			return cols, fmt.Errorf("%w: %q not in headers %v", domain.ErrTextColumnNotFound, o.opts.TextCol, headers)
		}
	}

	if cols.Group == "" {
		cols.Group = o.opts.GroupCol
	}
	if cols.Group == "" && o.opts.Mode == ModeHeader {
		cols.Group = inferGroupColumn(headers)
	}
	if cols.Group != "" && !cols.HasGroup() {
		o.logger.Warn("Group column not in headers; grouping disabled", zap.String("group_col", cols.Group))
	}
	if cols.ID != "" && !cols.HasID() {
		o.logger.Warn("ID column not in headers", zap.String("id_col", cols.ID))
		cols.ID = ""
	}

	return cols, nil
}

// inferGroupColumn picks a grouping column for well-known review datasets.
func inferGroupColumn(headers []string) string {
	if slices.Contains(headers, "ProductId") {
		return "ProductId"
	}
	if slices.Contains(headers, "target") && slices.Contains(headers, "text") {
		if slices.Contains(headers, "user") {
			return "user"
		}
		if slices.Contains(headers, "date") {
			return "date"
		}
	}
	return ""
}

// Source streams sanitized rows from a CSV file.
type Source struct {
	reader   *csv.Reader
	headers  []string
	cols     domain.Columns
	pending  []string
	sanitize domain.Sanitization
	closers  []func() error
}

func (s *Source) Columns() domain.Columns {
	return s.cols
}

// Next returns the next row that has at least one value and a non-empty text.
func (s *Source) Next() (domain.Row, error) {
	for {
		record, err := s.nextRecord()
		if err != nil {
			return nil, err
		}

		row, ok := s.sanitizeRecord(record)
		if ok {
			return row, nil
		}
	}
}

func (s *Source) nextRecord() ([]string, error) {
	if s.pending != nil {
		record := s.pending
		s.pending = nil
		return record, nil
	}
	return s.reader.Read()
}

// sanitizeRecord maps record onto the headers, padding or truncating it,
// and trims every value.
func (s *Source) sanitizeRecord(record []string) (domain.Row, bool) {
	row := make(domain.Row, len(s.headers))
	empty := true
	for i, h := range s.headers {
		v := ""
		if i < len(record) {
			v = strings.TrimSpace(record[i])
		}
		if v != "" {
			empty = false
		}
		row[h] = v
	}

	if empty {
		s.sanitize.Skipped++
		return nil, false
	}
	if row[s.cols.Text] == "" {
		s.sanitize.MissingText++
		return nil, false
	}
	return row, true
}

func (s *Source) Sanitization() domain.Sanitization {
	return s.sanitize
}

func (s *Source) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c())
	}
	return err
}

var (
	_ ports.RowSourceOpener = (*Opener)(nil)
	_ ports.RowSource       = (*Source)(nil)
)
