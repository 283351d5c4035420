package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// Streaming runs the same join as the in-memory strategy but writes the
// matched, only-left and only-right partitions incrementally to three
// temporary files. This bounds output memory; the left-side key index is
// still fully materialized.
type Streaming struct{}

// NewStreaming creates the streaming strategy.
func NewStreaming() *Streaming {
	return &Streaming{}
}

// Name identifies the strategy.
func (s *Streaming) Name() string {
	return "streaming"
}

// fileSink writes classified records to the pair's temp output files.
type fileSink struct {
	matchedW   *csvio.StreamWriter
	onlyLeftW  *csvio.StreamWriter
	onlyRightW *csvio.StreamWriter
}

func (f *fileSink) matched(rec *record.Record) error {
	return f.matchedW.WriteOne(rec)
}

func (f *fileSink) onlyLeft(rec *record.Record) error {
	return f.onlyLeftW.WriteOne(rec)
}

func (f *fileSink) onlyRight(rec *record.Record) error {
	return f.onlyRightW.WriteOne(rec)
}

// Reconcile joins the pair, streaming partition output to temp files.
func (s *Streaming) Reconcile(ctx context.Context, pair pairing.Pair, opts *Options) *FileComparison {
	start := time.Now()
	comp := newComparison(pair)
	defer func() { comp.Duration = time.Since(start) }()

	ctx = logging.WithStrategy(logging.WithPair(ctx, pair.Label), s.Name())

	gen, err := matchkey.NewGenerator(opts.Rule)
	if err != nil {
		comp.AddError(err)
		return comp
	}

	_, leftOK := fileSize(pair.LeftPath)
	_, rightOK := fileSize(pair.RightPath)
	comp.ExistsLeft = leftOK
	comp.ExistsRight = rightOK

	if !leftOK || !rightOK {
		if !leftOK {
			comp.AddError(errors.NewMissingFileError("left", pair.LeftPath))
		}
		if !rightOK {
			comp.AddError(errors.NewMissingFileError("right", pair.RightPath))
		}
		switch {
		case rightOK:
			oneSidedToFile(ctx, comp, opts, pair.RightPath, constants.OnlyRightFileName,
				&comp.OnlyRightPath, &comp.TotalRight, &comp.OnlyRightCount)
		case leftOK:
			oneSidedToFile(ctx, comp, opts, pair.LeftPath, constants.OnlyLeftFileName,
				&comp.OnlyLeftPath, &comp.TotalLeft, &comp.OnlyLeftCount)
		}
		cleanupIfCanceled(ctx, comp)
		return comp
	}

	dir, err := makePairTempDir(opts)
	if err != nil {
		comp.AddError(err)
		return comp
	}
	comp.TempDir = dir

	left, err := csvio.Open(ctx, pair.LeftPath, opts.ReadOptions())
	if err != nil {
		comp.AddError(err)
		return comp
	}
	defer left.Close()

	right, err := csvio.Open(ctx, pair.RightPath, opts.ReadOptions())
	if err != nil {
		comp.AddError(err)
		return comp
	}
	defer right.Close()

	out, err := openFileSink(dir, opts.Delimiter, left.Header(), right.Header())
	if err != nil {
		comp.AddError(err)
		return comp
	}
	comp.MatchedPath = out.matchedW.Path()
	comp.OnlyLeftPath = out.onlyLeftW.Path()
	comp.OnlyRightPath = out.onlyRightW.Path()

	runJoin(ctx, comp, gen, left, right, out)

	comp.AddError(out.close())
	cleanupIfCanceled(ctx, comp)
	return comp
}

// openFileSink creates the three partition writers inside the pair's temp
// directory. Matched output carries the merged column set.
func openFileSink(dir string, delimiter rune, leftHeader, rightHeader []string) (*fileSink, error) {
	matchedW, err := csvio.NewStreamWriter(filepath.Join(dir, constants.MatchedFileName), delimiter,
		mergedColumns(leftHeader, rightHeader))
	if err != nil {
		return nil, err
	}
	onlyLeftW, err := csvio.NewStreamWriter(filepath.Join(dir, constants.OnlyLeftFileName), delimiter, leftHeader)
	if err != nil {
		_ = matchedW.Close()
		return nil, err
	}
	onlyRightW, err := csvio.NewStreamWriter(filepath.Join(dir, constants.OnlyRightFileName), delimiter, rightHeader)
	if err != nil {
		_ = matchedW.Close()
		_ = onlyLeftW.Close()
		return nil, err
	}
	return &fileSink{matchedW: matchedW, onlyLeftW: onlyLeftW, onlyRightW: onlyRightW}, nil
}

// close flushes and releases all three writers, returning the first error.
func (f *fileSink) close() error {
	errMatched := f.matchedW.Close()
	errLeft := f.onlyLeftW.Close()
	errRight := f.onlyRightW.Close()
	if errMatched != nil {
		return errMatched
	}
	if errLeft != nil {
		return errLeft
	}
	return errRight
}

// oneSidedToFile classifies a whole file into a single temp output when the
// other side of the pair is missing.
func oneSidedToFile(ctx context.Context, comp *FileComparison, opts *Options, path, outName string, outPath *string, total, classified *int) {
	dir, err := makePairTempDir(opts)
	if err != nil {
		comp.AddError(err)
		return
	}
	comp.TempDir = dir

	scanner, err := csvio.Open(ctx, path, opts.ReadOptions())
	if err != nil {
		comp.AddError(err)
		return
	}
	defer scanner.Close()

	writer, err := csvio.NewStreamWriter(filepath.Join(dir, outName), opts.Delimiter, scanner.Header())
	if err != nil {
		comp.AddError(err)
		return
	}
	*outPath = writer.Path()

	for scanner.Next() {
		*total++
		rec := scanner.Record()
		if err := writer.WriteOne(rec); err != nil {
			comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
			continue
		}
		*classified++
	}
	if err := scanner.Err(); err != nil {
		comp.AddError(errors.WrapIO("read", path, err))
	}
	comp.AddError(writer.Close())
}

// makePairTempDir creates a working directory private to one pair, so
// concurrent pairs never contend on temp output.
func makePairTempDir(opts *Options) (string, error) {
	dir := filepath.Join(opts.TempDir, constants.TempDirPrefix, uuid.NewString())
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	return dir, nil
}

// cleanupIfCanceled removes the pair's temp directory after a cancellation
// so no partially written output survives. The path fields are cleared to
// keep them from dangling.
func cleanupIfCanceled(ctx context.Context, comp *FileComparison) {
	if ctx.Err() == nil || comp.TempDir == "" {
		return
	}
	if err := os.RemoveAll(comp.TempDir); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("dir", comp.TempDir).Msg("Failed to remove temp dir")
	}
	comp.TempDir = ""
	comp.MatchedPath = ""
	comp.OnlyLeftPath = ""
	comp.OnlyRightPath = ""
}
