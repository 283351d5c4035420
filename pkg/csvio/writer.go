package csvio

import (
	"bufio"
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// WriteAll writes records to a delimited file in one pass. The header is the
// sorted union of all field names seen across the records, written once
// before the first data row. An empty record set produces an empty file.
func WriteAll(path string, records []*record.Record, delimiter rune) error {
	columns := record.ColumnUnion(records)

	writer, err := NewStreamWriter(path, delimiter, columns)
	if err != nil {
		return err
	}
	if err := writer.WriteMany(records); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// StreamWriter writes records to a delimited file incrementally. The declared
// column set is fixed at open time and written as the header; records are
// projected onto those columns, absent fields producing empty cells. Fields
// outside the declared set are appended after the declared cells so no value
// is ever dropped: positional names (column_N) keep their numeric order,
// other names sort lexicographically. With no declared columns the file is
// headerless and every row is written entirely in that appended order.
type StreamWriter struct {
	path     string
	file     *os.File
	buf      *bufio.Writer
	writer   *csv.Writer
	columns  []string
	declared map[string]struct{}
	closed   bool
}

// NewStreamWriter creates the target file, writes the header, and returns a
// writer ready for incremental rows. The caller must Close it; Close is
// guaranteed to release the file even after a write failure.
func NewStreamWriter(path string, delimiter rune, columns []string) (*StreamWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}

	buf := bufio.NewWriterSize(file, constants.WriteBufferSize)
	writer := csv.NewWriter(buf)
	writer.Comma = delimiter

	declared := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		declared[col] = struct{}{}
	}

	sw := &StreamWriter{
		path:     path,
		file:     file,
		buf:      buf,
		writer:   writer,
		columns:  columns,
		declared: declared,
	}

	if len(columns) > 0 {
		if err := writer.Write(columns); err != nil {
			_ = file.Close()
			return nil, errors.WrapIO("write", path, err)
		}
	}

	return sw, nil
}

// Path returns the file the writer targets.
func (w *StreamWriter) Path() string {
	return w.path
}

// Columns returns the declared output column set.
func (w *StreamWriter) Columns() []string {
	return w.columns
}

// WriteOne appends a single record as a row: the declared columns first,
// then any remaining fields of the record.
func (w *StreamWriter) WriteOne(rec *record.Record) error {
	row := make([]string, len(w.columns), len(w.columns)+len(rec.Fields))
	for i, col := range w.columns {
		row[i] = rec.Get(col)
	}
	for _, col := range w.extraColumns(rec) {
		row = append(row, rec.Get(col))
	}
	if err := w.writer.Write(row); err != nil {
		return errors.WrapIO("write", w.path, err)
	}
	return nil
}

// WriteMany appends records in order, stopping at the first failure.
func (w *StreamWriter) WriteMany(records []*record.Record) error {
	for _, rec := range records {
		if err := w.WriteOne(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows and releases the file. It is idempotent.
func (w *StreamWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	flushErr := w.writer.Error()
	bufErr := w.buf.Flush()
	closeErr := w.file.Close()

	if flushErr != nil {
		return errors.WrapIO("write", w.path, flushErr)
	}
	if bufErr != nil {
		return errors.WrapIO("write", w.path, bufErr)
	}
	if closeErr != nil {
		return errors.WrapIO("close", w.path, closeErr)
	}
	return nil
}

// extraColumns returns the record's field names not covered by the declared
// columns, in deterministic output order.
func (w *StreamWriter) extraColumns(rec *record.Record) []string {
	var extras []string
	for name := range rec.Fields {
		if _, ok := w.declared[name]; !ok {
			extras = append(extras, name)
		}
	}
	if len(extras) == 0 {
		return nil
	}
	sort.Slice(extras, func(i, j int) bool {
		return columnLess(extras[i], extras[j])
	})
	return extras
}

// columnLess orders positional column names numerically and before all other
// names, so headerless rows come out in their original cell order.
func columnLess(a, b string) bool {
	ai, aok := positionalIndex(a)
	bi, bok := positionalIndex(b)
	switch {
	case aok && bok:
		return ai < bi
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// positionalIndex parses a positional column name (column_N) back to its
// one-based index.
func positionalIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "column_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
