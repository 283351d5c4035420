package reconcile

import (
	"context"
	"os"
	"sort"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// Strategy reconciles a single file pair. Implementations never return an
// error: every failure, including cancellation, is captured on the
// comparison result so the dispatcher can keep the batch running.
type Strategy interface {
	// Name identifies the strategy in logs and summaries.
	Name() string

	// Reconcile partitions the pair's records into matched, only-left
	// and only-right sets.
	Reconcile(ctx context.Context, pair pairing.Pair, opts *Options) *FileComparison
}

// ForPair selects the strategy for a pair. The chunked strategy runs when
// the combined input size exceeds the configured threshold; otherwise the
// streaming strategy when streaming output is enabled, else in-memory.
func ForPair(pair pairing.Pair, opts *Options) Strategy {
	leftSize, leftOK := fileSize(pair.LeftPath)
	rightSize, rightOK := fileSize(pair.RightPath)
	if leftOK && rightOK && leftSize+rightSize > opts.ThresholdBytes() {
		return NewChunked()
	}
	if opts.StreamingOutput {
		return NewStreaming()
	}
	return NewInMemory()
}

// fileSize returns a file's size in bytes and whether it exists.
func fileSize(path string) (int64, bool) {
	if path == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// sink receives classified records during a join. The in-memory strategy
// retains or counts them; the streaming strategies write them out.
type sink interface {
	matched(*record.Record) error
	onlyLeft(*record.Record) error
	onlyRight(*record.Record) error
}

// leftIndex holds the left side of a join keyed by matching key, preserving
// first-seen key order so only-left output follows left read order.
// On a duplicate key the last write wins; the duplicate is logged.
type leftIndex struct {
	byKey map[string]*record.Record
	order []string
}

func newLeftIndex() *leftIndex {
	return &leftIndex{byKey: make(map[string]*record.Record)}
}

func (ix *leftIndex) insert(ctx context.Context, key string, rec *record.Record) {
	if _, dup := ix.byKey[key]; dup {
		logging.FromContext(ctx).Warn().
			Str("key", key).
			Str("file", rec.SourceFile).
			Int("line", rec.LineNumber).
			Msg("Duplicate key on left side, last write wins")
	} else {
		ix.order = append(ix.order, key)
	}
	ix.byKey[key] = rec
}

// runJoin is the streaming set-difference join shared by the in-memory and
// streaming strategies: index the left side, stream the right side against
// it, then drain the index leftovers as only-left.
//
// Row-level sink failures are recorded on the comparison and skip only the
// offending record; read failures (including cancellation) abort the join.
func runJoin(ctx context.Context, comp *FileComparison, gen *matchkey.Generator, left, right *csvio.Scanner, out sink) {
	ix := newLeftIndex()
	for left.Next() {
		comp.TotalLeft++
		rec := left.Record()
		ix.insert(ctx, gen.Key(rec), rec)
	}
	if err := left.Err(); err != nil {
		comp.AddError(errors.WrapIO("read", left.Path(), err))
		return
	}

	for right.Next() {
		comp.TotalRight++
		rec := right.Record()
		key := gen.Key(rec)
		if leftRec, ok := ix.byKey[key]; ok {
			delete(ix.byKey, key)
			merged := record.Merge(leftRec, rec)
			if err := out.matched(merged); err != nil {
				comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
				continue
			}
			comp.MatchedCount++
		} else {
			if err := out.onlyRight(rec); err != nil {
				comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
				continue
			}
			comp.OnlyRightCount++
		}
	}
	if err := right.Err(); err != nil {
		comp.AddError(errors.WrapIO("read", right.Path(), err))
		return
	}

	for _, key := range ix.order {
		leftRec, ok := ix.byKey[key]
		if !ok {
			continue
		}
		delete(ix.byKey, key)
		if err := out.onlyLeft(leftRec); err != nil {
			comp.AddError(errors.NewProcessingError(leftRec.SourceFile, leftRec.LineNumber, err))
			continue
		}
		comp.OnlyLeftCount++
	}
}

// classifyOneSided handles the shared missing-file prelude: when one side of
// the pair is absent an error is recorded and the surviving side, if any, is
// read in full and classified one-sidedly. It reports whether the comparison
// was completed without a join.
func classifyOneSided(ctx context.Context, comp *FileComparison, pair pairing.Pair, opts *Options, out sink) bool {
	_, leftOK := fileSize(pair.LeftPath)
	_, rightOK := fileSize(pair.RightPath)
	comp.ExistsLeft = leftOK
	comp.ExistsRight = rightOK
	if leftOK && rightOK {
		return false
	}

	if !leftOK {
		comp.AddError(errors.NewMissingFileError("left", pair.LeftPath))
	}
	if !rightOK {
		comp.AddError(errors.NewMissingFileError("right", pair.RightPath))
	}

	switch {
	case rightOK:
		streamSide(ctx, comp, pair.RightPath, opts, &comp.TotalRight, &comp.OnlyRightCount, out.onlyRight)
	case leftOK:
		streamSide(ctx, comp, pair.LeftPath, opts, &comp.TotalLeft, &comp.OnlyLeftCount, out.onlyLeft)
	}
	return true
}

// streamSide reads one file in full and feeds every record to emit.
func streamSide(ctx context.Context, comp *FileComparison, path string, opts *Options, total, classified *int, emit func(*record.Record) error) {
	scanner, err := csvio.Open(ctx, path, opts.ReadOptions())
	if err != nil {
		comp.AddError(err)
		return
	}
	defer scanner.Close()

	for scanner.Next() {
		*total++
		rec := scanner.Record()
		if err := emit(rec); err != nil {
			comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
			continue
		}
		*classified++
	}
	if err := scanner.Err(); err != nil {
		comp.AddError(errors.WrapIO("read", path, err))
	}
}

// mergedColumns is the output column set for matched records: the union of
// both headers plus a conflict-suffixed variant for every column present on
// both sides, sorted lexicographically.
func mergedColumns(leftHeader, rightHeader []string) []string {
	union := make(map[string]struct{}, len(leftHeader)+len(rightHeader))
	left := make(map[string]struct{}, len(leftHeader))
	for _, name := range leftHeader {
		union[name] = struct{}{}
		left[name] = struct{}{}
	}
	for _, name := range rightHeader {
		union[name] = struct{}{}
		if _, both := left[name]; both {
			union[name+constants.ConflictSuffix] = struct{}{}
		}
	}
	columns := make([]string, 0, len(union))
	for name := range union {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
