package reconcile

import (
	"context"
	"time"

	"github.com/csvrecon/csvrecon/pkg/csvio"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/record"
)

// InMemory is the reconciliation strategy for small file pairs: the left
// side is fully indexed in memory and the partitioned records are either
// retained on the result or reduced to counts, depending on configuration.
type InMemory struct{}

// NewInMemory creates the in-memory strategy.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Name identifies the strategy.
func (s *InMemory) Name() string {
	return "in-memory"
}

// memorySink retains classified records on the comparison when retention is
// enabled; otherwise records are counted and discarded.
type memorySink struct {
	comp   *FileComparison
	retain bool
}

func (m *memorySink) matched(rec *record.Record) error {
	if m.retain {
		m.comp.Matched = append(m.comp.Matched, rec)
	}
	return nil
}

func (m *memorySink) onlyLeft(rec *record.Record) error {
	if m.retain {
		m.comp.OnlyLeft = append(m.comp.OnlyLeft, rec)
	}
	return nil
}

func (m *memorySink) onlyRight(rec *record.Record) error {
	if m.retain {
		m.comp.OnlyRight = append(m.comp.OnlyRight, rec)
	}
	return nil
}

// Reconcile joins the pair entirely in memory.
func (s *InMemory) Reconcile(ctx context.Context, pair pairing.Pair, opts *Options) *FileComparison {
	start := time.Now()
	comp := newComparison(pair)
	defer func() { comp.Duration = time.Since(start) }()

	ctx = logging.WithStrategy(logging.WithPair(ctx, pair.Label), s.Name())

	gen, err := matchkey.NewGenerator(opts.Rule)
	if err != nil {
		comp.AddError(err)
		return comp
	}

	out := &memorySink{comp: comp, retain: opts.RetainRecords}
	if classifyOneSided(ctx, comp, pair, opts, out) {
		return comp
	}

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

	runJoin(ctx, comp, gen, left, right, out)
	return comp
}
