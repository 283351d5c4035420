// Package dispatch runs pair reconciliations concurrently with a bounded
// worker count. Pair failures never abort the batch: a panic or error inside
// one pair becomes a failed comparison in the aggregate result and the
// remaining pairs keep running.
package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

// Selector chooses the strategy for a pair. The default selector picks by
// input size and configuration; tests substitute fixed strategies.
type Selector func(pair pairing.Pair) reconcile.Strategy

// Dispatcher fans file pairs out to a bounded set of workers.
type Dispatcher struct {
	concurrency int
}

// New creates a dispatcher. A non-positive concurrency means the available
// processor count.
func New(concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Dispatcher{concurrency: concurrency}
}

// Concurrency returns the worker bound.
func (d *Dispatcher) Concurrency() int {
	return d.concurrency
}

// Run reconciles every pair and aggregates the outcomes. At most the
// configured number of pairs run at once. The returned comparisons are
// sorted by pair label regardless of completion order.
func (d *Dispatcher) Run(ctx context.Context, pairs []pairing.Pair, selector Selector, opts *reconcile.Options) *reconcile.Result {
	start := time.Now()
	result := &reconcile.Result{Pairs: make([]*reconcile.FileComparison, len(pairs))}

	logging.FromContext(ctx).Info().
		Int("pairs", len(pairs)).
		Int("concurrency", d.concurrency).
		Msg("Dispatching reconciliation")

	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair pairing.Pair) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			result.Pairs[i] = d.runOne(ctx, pair, selector, opts)
		}(i, pair)
	}
	wg.Wait()

	sort.Slice(result.Pairs, func(i, j int) bool {
		return result.Pairs[i].Label < result.Pairs[j].Label
	})
	result.TotalDuration = time.Since(start)
	return result
}

// runOne reconciles a single pair, converting a panic into a failed
// comparison so one bad pair cannot take the batch down.
func (d *Dispatcher) runOne(ctx context.Context, pair pairing.Pair, selector Selector, opts *reconcile.Options) (comp *reconcile.FileComparison) {
	log := logging.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("pair", pair.Label).
				Interface("panic", r).
				Msg("Pair reconciliation panicked")
			comp = reconcile.NewFailedComparison(pair,
				errors.NewPairError(pair.Label, fmt.Errorf("panic: %v", r)))
		}
	}()

	strategy := selector(pair)
	log.Info().
		Str("pair", pair.Label).
		Str("strategy", strategy.Name()).
		Msg("Reconciling pair")

	comp = strategy.Reconcile(ctx, pair, opts)

	log.Info().
		Str("pair", pair.Label).
		Int("matched", comp.MatchedCount).
		Int("only_left", comp.OnlyLeftCount).
		Int("only_right", comp.OnlyRightCount).
		Int("errors", len(comp.Errors)).
		Dur("duration", comp.Duration).
		Msg("Pair reconciled")
	return comp
}
