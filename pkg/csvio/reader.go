// Package csvio reads and writes delimited tabular files as records.
// It is the Reader/Writer collaborator of the reconciliation engine: header
// normalization and malformed-row tolerance are handled here so the engine
// only ever sees well-formed records.
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// Options configures how a delimited file is read.
type Options struct {
	// Delimiter separates fields within a row.
	Delimiter rune

	// HasHeader treats the first row as column names. Without a header,
	// columns are named positionally (column_1, column_2, ...).
	HasHeader bool
}

// DefaultOptions returns the standard read options: comma-delimited with a
// header row.
func DefaultOptions() Options {
	return Options{Delimiter: constants.DefaultDelimiter, HasHeader: true}
}

// Scanner streams records from a delimited file one row at a time.
// It is finite and not restartable; Close releases the underlying file and
// is safe to call more than once.
type Scanner struct {
	ctx    context.Context
	path   string
	base   string
	file   *os.File
	reader *csv.Reader
	header []string
	opts   Options

	rec            *record.Record
	err            error
	row            int // data row ordinal, 1-based
	checkCountdown int // rows until the next context cancellation check
	closed         bool
}

// Open opens a delimited file for streaming reads. The header row, when
// present, is consumed and normalized immediately.
func Open(ctx context.Context, path string, opts Options) (*Scanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	s := &Scanner{
		ctx:    ctx,
		path:   path,
		base:   filepath.Base(path),
		file:   file,
		reader: reader,
		opts:   opts,
	}

	if opts.HasHeader {
		row, err := reader.Read()
		switch {
		case err == io.EOF:
			// Empty file: no header, no rows.
		case err != nil:
			_ = file.Close()
			return nil, errors.WrapParse("csv", path, err)
		default:
			s.header = NormalizeHeader(row)
		}
	}

	return s, nil
}

// Path returns the file the scanner reads.
func (s *Scanner) Path() string {
	return s.path
}

// Header returns the normalized column names, or nil when the file has no
// header row.
func (s *Scanner) Header() []string {
	return s.header
}

// Next advances to the next readable row. Malformed rows are logged and
// skipped, never fatal. Next returns false at end of input, on a read
// failure, or once the context is cancelled; cancellation is checked on the
// first row and every CancellationCheckInterval rows after that. Consult Err
// to distinguish the terminating conditions.
func (s *Scanner) Next() bool {
	if s.err != nil || s.closed {
		return false
	}
	for {
		if s.checkCountdown == 0 {
			if err := s.ctx.Err(); err != nil {
				s.err = err
				return false
			}
			s.checkCountdown = constants.CancellationCheckInterval
		}
		s.checkCountdown--

		row, err := s.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				logging.FromContext(s.ctx).Warn().
					Err(err).
					Str("file", s.base).
					Msg("Skipping malformed row")
				continue
			}
			s.err = errors.WrapIO("read", s.path, err)
			return false
		}

		s.row++
		s.rec = s.buildRecord(row)
		return true
	}
}

// Record returns the record produced by the last successful Next call.
func (s *Scanner) Record() *record.Record {
	return s.rec
}

// Err returns the error that terminated the stream, or nil after a clean
// end of input.
func (s *Scanner) Err() error {
	return s.err
}

// Close releases the underlying file.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Close(); err != nil {
		return errors.WrapIO("close", s.path, err)
	}
	return nil
}

// buildRecord maps a raw row onto column names. Cells beyond the header get
// positional names so no value is silently dropped.
func (s *Scanner) buildRecord(row []string) *record.Record {
	line := s.row
	if s.opts.HasHeader {
		line++
	}
	rec := record.New(s.base, line)
	for i, cell := range row {
		name := positionalColumn(i)
		if i < len(s.header) {
			name = s.header[i]
		}
		rec.Set(name, cell)
	}
	return rec
}

// ReadAll reads every record of a delimited file into memory.
func ReadAll(ctx context.Context, path string, opts Options) ([]*record.Record, error) {
	scanner, err := Open(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	var records []*record.Record
	for scanner.Next() {
		records = append(records, scanner.Record())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// NormalizeHeader renames blank and duplicate header cells so column names
// are unique and non-empty. Blank cells become positional names; a repeated
// name gets a numeric suffix (name, name_2, name_3, ...).
func NormalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	counts := make(map[string]int, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = positionalColumn(i)
		}
		counts[name]++
		if n := counts[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		header[i] = name
	}
	return header
}

// positionalColumn names the column at a zero-based index.
func positionalColumn(i int) string {
	return fmt.Sprintf("column_%d", i+1)
}
