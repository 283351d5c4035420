package reconcile

import (
	"context"
	"time"

	"github.com/csvrecon/csvrecon/pkg/constants"
	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// Chunked reconciles pairs too large to index in memory. The left side is
// read in chunks bounded by the configured chunk size; the right side is
// re-read once per chunk to find matches. A final pass over the right side
// emits only-right records (deduplicated by key), and a recovery pass over
// the left side emits the only-left records whose chunks have been released.
//
// Memory is bounded by one chunk plus the matched and pending key sets;
// the cost is O(chunks) extra reads of the right file.
type Chunked struct{}

// NewChunked creates the chunked strategy.
func NewChunked() *Chunked {
	return &Chunked{}
}

// Name identifies the strategy.
func (s *Chunked) Name() string {
	return "chunked"
}

// Reconcile joins the pair chunk by chunk, streaming output to temp files.
func (s *Chunked) Reconcile(ctx context.Context, pair pairing.Pair, opts *Options) *FileComparison {
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

	// Opened early so the matched output header is known before the first
	// chunk; the same scanner serves as the first chunk's right stream.
	firstRight, err := csvio.Open(ctx, pair.RightPath, opts.ReadOptions())
	if err != nil {
		comp.AddError(err)
		return comp
	}

	out, err := openFileSink(dir, opts.Delimiter, left.Header(), firstRight.Header())
	if err != nil {
		_ = firstRight.Close()
		comp.AddError(err)
		return comp
	}
	comp.MatchedPath = out.matchedW.Path()
	comp.OnlyLeftPath = out.onlyLeftW.Path()
	comp.OnlyRightPath = out.onlyRightW.Path()

	run := &chunkedRun{
		comp:         comp,
		gen:          gen,
		opts:         opts,
		pair:         pair,
		out:          out,
		matchedRight: make(map[string]struct{}),
		pendingLeft:  make(map[string]struct{}),
	}
	run.execute(ctx, left, firstRight)

	comp.AddError(out.close())
	cleanupIfCanceled(ctx, comp)
	return comp
}

// chunkedRun carries the state of one chunked reconciliation: which right
// keys have matched any chunk, and which left keys are still waiting to be
// confirmed as only-left.
type chunkedRun struct {
	comp *FileComparison
	gen  *matchkey.Generator
	opts *Options
	pair pairing.Pair
	out  *fileSink

	matchedRight map[string]struct{}
	pendingLeft  map[string]struct{}
}

func (r *chunkedRun) execute(ctx context.Context, left, firstRight *csvio.Scanner) {
	budget := r.opts.ChunkSizeBytes()
	rightScan := firstRight
	defer func() {
		if rightScan != nil {
			_ = rightScan.Close()
		}
	}()

	for {
		ck := r.loadChunk(ctx, left, budget)
		if err := left.Err(); err != nil {
			r.comp.AddError(errors.WrapIO("read", left.Path(), err))
			return
		}
		if ck.empty() {
			break
		}

		if rightScan == nil {
			var err error
			rightScan, err = csvio.Open(ctx, r.pair.RightPath, r.opts.ReadOptions())
			if err != nil {
				r.comp.AddError(err)
				return
			}
		}
		if !r.matchChunk(ck, rightScan) {
			return
		}
		_ = rightScan.Close()
		rightScan = nil

		// Keys left in the chunk had no match on this pass; a later
		// chunk may still match them (duplicate left keys), so they are
		// only confirmed as only-left during recovery.
		for _, key := range ck.order {
			if _, unmatched := ck.byKey[key]; unmatched {
				r.pendingLeft[key] = struct{}{}
			}
		}
	}

	if rightScan != nil {
		_ = rightScan.Close()
		rightScan = nil
	}

	r.finalRightPass(ctx)
	r.recoverOnlyLeft(ctx)
}

// loadChunk reads left records until the footprint budget is reached or the
// left side is exhausted.
func (r *chunkedRun) loadChunk(ctx context.Context, left *csvio.Scanner, budget int64) *chunk {
	ck := newChunk()
	var size int64
	for left.Next() {
		r.comp.TotalLeft++
		rec := left.Record()
		key := r.gen.Key(rec)
		if _, dup := ck.byKey[key]; dup {
			logging.FromContext(ctx).Warn().
				Str("key", key).
				Str("file", rec.SourceFile).
				Int("line", rec.LineNumber).
				Msg("Duplicate key on left side, last write wins")
		}
		ck.insert(key, rec)
		size += EstimateFootprint(rec)
		if size >= budget {
			break
		}
	}
	return ck
}

// matchChunk streams the right side against one chunk, writing merged
// records for every hit. It reports whether the pass completed.
func (r *chunkedRun) matchChunk(ck *chunk, rightScan *csvio.Scanner) bool {
	for rightScan.Next() {
		rec := rightScan.Record()
		key := r.gen.Key(rec)
		leftRec, ok := ck.byKey[key]
		if !ok {
			continue
		}
		delete(ck.byKey, key)
		r.matchedRight[key] = struct{}{}

		merged := record.Merge(leftRec, rec)
		if err := r.out.matched(merged); err != nil {
			r.comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
			continue
		}
		r.comp.MatchedCount++
	}
	if err := rightScan.Err(); err != nil {
		r.comp.AddError(errors.WrapIO("read", rightScan.Path(), err))
		return false
	}
	return true
}

// finalRightPass counts the right side and emits every record whose key
// never matched a chunk. Repeated unmatched keys are emitted once.
func (r *chunkedRun) finalRightPass(ctx context.Context) {
	scanner, err := csvio.Open(ctx, r.pair.RightPath, r.opts.ReadOptions())
	if err != nil {
		r.comp.AddError(err)
		return
	}
	defer scanner.Close()

	emitted := make(map[string]struct{})
	for scanner.Next() {
		r.comp.TotalRight++
		rec := scanner.Record()
		key := r.gen.Key(rec)
		if _, matched := r.matchedRight[key]; matched {
			continue
		}
		if _, seen := emitted[key]; seen {
			continue
		}
		emitted[key] = struct{}{}
		if err := r.out.onlyRight(rec); err != nil {
			r.comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
			continue
		}
		r.comp.OnlyRightCount++
	}
	if err := scanner.Err(); err != nil {
		r.comp.AddError(errors.WrapIO("read", scanner.Path(), err))
	}
}

// recoverOnlyLeft re-reads the left side and emits the pending keys that no
// chunk pass matched. Keys matched by a later chunk are skipped.
func (r *chunkedRun) recoverOnlyLeft(ctx context.Context) {
	if len(r.pendingLeft) == 0 {
		return
	}

	scanner, err := csvio.Open(ctx, r.pair.LeftPath, r.opts.ReadOptions())
	if err != nil {
		r.comp.AddError(err)
		return
	}
	defer scanner.Close()

	for scanner.Next() {
		rec := scanner.Record()
		key := r.gen.Key(rec)
		if _, pending := r.pendingLeft[key]; !pending {
			continue
		}
		delete(r.pendingLeft, key)
		if _, matched := r.matchedRight[key]; matched {
			continue
		}
		if err := r.out.onlyLeft(rec); err != nil {
			r.comp.AddError(errors.NewProcessingError(rec.SourceFile, rec.LineNumber, err))
			continue
		}
		r.comp.OnlyLeftCount++
	}
	if err := scanner.Err(); err != nil {
		r.comp.AddError(errors.WrapIO("read", scanner.Path(), err))
	}
}
