package reconcile

import (
	"time"

	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// FileComparison is the outcome of reconciling a single file pair.
// Depending on the strategy that produced it, the partitioned records are
// either retained in memory (Matched/OnlyLeft/OnlyRight) or written to
// temporary files (MatchedPath/OnlyLeftPath/OnlyRightPath). Temp files are
// copied to the final output location by report generation and then
// removed; the path fields must not be read after that cleanup.
type FileComparison struct {
	Label string

	ExistsLeft  bool
	ExistsRight bool

	TotalLeft  int
	TotalRight int

	MatchedCount   int
	OnlyLeftCount  int
	OnlyRightCount int

	// Populated only when in-memory record retention is enabled.
	Matched   []*record.Record
	OnlyLeft  []*record.Record
	OnlyRight []*record.Record

	// Populated by the streaming and chunked strategies.
	MatchedPath   string
	OnlyLeftPath  string
	OnlyRightPath string

	// TempDir is the pair's private working directory, removed after its
	// contents are copied to the output directory.
	TempDir string

	Duration time.Duration
	Errors   []string
}

// newComparison creates a comparison result for a pair with existence flags
// not yet determined.
func newComparison(pair pairing.Pair) *FileComparison {
	return &FileComparison{Label: pair.Label}
}

// NewFailedComparison creates a failed result carrying a single error.
// The dispatcher uses it to convert an escaped failure into a reportable
// outcome instead of aborting the batch.
func NewFailedComparison(pair pairing.Pair, err error) *FileComparison {
	comp := newComparison(pair)
	comp.AddError(err)
	return comp
}

// AddError records a pair-level or row-level error.
func (c *FileComparison) AddError(err error) {
	if err == nil {
		return
	}
	c.Errors = append(c.Errors, err.Error())
}

// Success is derived: a comparison succeeded iff no errors were recorded.
func (c *FileComparison) Success() bool {
	return len(c.Errors) == 0
}

// Result aggregates the per-pair comparisons of a reconciliation run.
// Every total is derived by summation or filtering over the pair results,
// never stored redundantly.
type Result struct {
	Pairs         []*FileComparison
	TotalDuration time.Duration
}

// TotalLeft sums the left-side record counts across pairs.
func (r *Result) TotalLeft() int {
	n := 0
	for _, c := range r.Pairs {
		n += c.TotalLeft
	}
	return n
}

// TotalRight sums the right-side record counts across pairs.
func (r *Result) TotalRight() int {
	n := 0
	for _, c := range r.Pairs {
		n += c.TotalRight
	}
	return n
}

// TotalMatched sums the matched counts across pairs.
func (r *Result) TotalMatched() int {
	n := 0
	for _, c := range r.Pairs {
		n += c.MatchedCount
	}
	return n
}

// TotalOnlyLeft sums the only-left counts across pairs.
func (r *Result) TotalOnlyLeft() int {
	n := 0
	for _, c := range r.Pairs {
		n += c.OnlyLeftCount
	}
	return n
}

// TotalOnlyRight sums the only-right counts across pairs.
func (r *Result) TotalOnlyRight() int {
	n := 0
	for _, c := range r.Pairs {
		n += c.OnlyRightCount
	}
	return n
}

// SuccessfulCount counts the pairs that completed without errors.
func (r *Result) SuccessfulCount() int {
	n := 0
	for _, c := range r.Pairs {
		if c.Success() {
			n++
		}
	}
	return n
}

// FailedCount counts the pairs that recorded at least one error.
func (r *Result) FailedCount() int {
	return len(r.Pairs) - r.SuccessfulCount()
}

// MissingLeft counts the pairs whose left file was absent.
func (r *Result) MissingLeft() int {
	n := 0
	for _, c := range r.Pairs {
		if !c.ExistsLeft {
			n++
		}
	}
	return n
}

// MissingRight counts the pairs whose right file was absent.
func (r *Result) MissingRight() int {
	n := 0
	for _, c := range r.Pairs {
		if !c.ExistsRight {
			n++
		}
	}
	return n
}

// Success reports whether every pair reconciled cleanly.
func (r *Result) Success() bool {
	return r.FailedCount() == 0
}
