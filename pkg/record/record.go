// Package record defines the in-memory row representation shared by the
// reconciliation engine, its readers, and its writers. A record is an
// order-irrelevant mapping of column name to string value plus provenance
// (source file and line number).
package record

import (
	"sort"

	"github.com/csvrecon/csvrecon/pkg/constants"
)

// Record is a single row read from a delimited file. Column names are unique
// and case-preserving. A record is not mutated after creation except through
// Merge, which produces a new record.
type Record struct {
	Fields     map[string]string
	SourceFile string
	LineNumber int
}

// New creates an empty record with the given provenance.
func New(sourceFile string, lineNumber int) *Record {
	return &Record{
		Fields:     make(map[string]string),
		SourceFile: sourceFile,
		LineNumber: lineNumber,
	}
}

// Get returns the value for a column name, or the empty string when the
// column is absent. Absence is never an error.
func (r *Record) Get(name string) string {
	return r.Fields[name]
}

// Set stores a value under a column name.
func (r *Record) Set(name, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[name] = value
}

// Has reports whether the record carries the given column.
func (r *Record) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// Columns returns the record's column names sorted lexicographically.
func (r *Record) Columns() []string {
	cols := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		Fields:     make(map[string]string, len(r.Fields)),
		SourceFile: r.SourceFile,
		LineNumber: r.LineNumber,
	}
	for k, v := range r.Fields {
		clone.Fields[k] = v
	}
	return clone
}

// Merge combines a matched pair of records into a single record. The result
// starts with all of the left record's fields. Right-side columns that are
// new are added as-is. A right-side column that already exists with a
// different value is preserved under a suffixed name (both values survive);
// identical values are kept once. The merge is documented as not fully
// lossless: a same-named column with an equal value silently collapses.
//
// Provenance: SourceFile becomes "left + right", LineNumber is the left's.
func Merge(left, right *Record) *Record {
	merged := &Record{
		Fields:     make(map[string]string, len(left.Fields)+len(right.Fields)),
		SourceFile: left.SourceFile + constants.MergedSourceSeparator + right.SourceFile,
		LineNumber: left.LineNumber,
	}
	for k, v := range left.Fields {
		merged.Fields[k] = v
	}
	for k, v := range right.Fields {
		existing, ok := merged.Fields[k]
		switch {
		case !ok:
			merged.Fields[k] = v
		case existing != v:
			merged.Fields[k+constants.ConflictSuffix] = v
		}
	}
	return merged
}

// ColumnUnion returns the sorted union of all column names across records.
// Writers use it to build a stable output header.
func ColumnUnion(records []*Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for name := range rec.Fields {
			seen[name] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for name := range seen {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}
