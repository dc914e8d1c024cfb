package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ballotwatch/candidate-sync/internal/store"
)

// RunOpts configures which collectors to run.
type RunOpts struct {
	Sources     []string // restrict to specific collector names
	Concurrency int      // max collectors in flight; default 1
}

// Runner executes collectors against the canonical store, wrapping each
// in a collection run ledger entry. Each collector is sequential
// internally (provider rate limits make fan-out pointless). The default
// is also sequential across collectors, in registration order: the wiki
// collector scopes itself from election rows the filings collector
// creates, so on a fresh store it must run second. Concurrency above 1
// is an explicit opt-in for sources known to be independent; merge
// conflicts between them are commutative under the max-confidence
// policy.
type Runner struct {
	st  *store.Store
	reg *Registry
}

// NewRunner creates a Runner.
func NewRunner(st *store.Store, reg *Registry) *Runner {
	return &Runner{st: st, reg: reg}
}

// Run executes the selected collectors. A collector-fatal error
// finalizes that collector's ledger entry as failed without aborting
// the others; Run returns an error when any collector failed so the
// process exits non-zero.
func (r *Runner) Run(ctx context.Context, opts RunOpts) error {
	log := zap.L().With(zap.String("component", "collector.runner"))

	collectors, err := r.reg.Select(opts.Sources)
	if err != nil {
		return err
	}
	if len(collectors) == 0 {
		log.Info("no collectors selected")
		return nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var completed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, c := range collectors {
		g.Go(func() error {
			cLog := log.With(zap.String("source", c.Name()))

			runID, err := r.st.Runs.Start(gctx, c.Name())
			if err != nil {
				// The ledger is the canonical store; failing to open an
				// entry means the store is unusable for this run.
				return eris.Wrapf(err, "runner: start ledger entry for %s", c.Name())
			}

			cLog.Info("collection started", zap.Int64("run_id", runID))
			start := time.Now()

			stats, cerr := c.Collect(gctx, r.st)
			elapsed := time.Since(start)

			if cerr != nil {
				cLog.Error("collection failed",
					zap.Int64("run_id", runID),
					zap.Error(cerr),
					zap.Duration("elapsed", elapsed),
				)
				if lerr := r.st.Runs.Fail(gctx, runID, cerr, stats); lerr != nil {
					cLog.Error("failed to record run failure", zap.Error(lerr))
				}
				failed.Add(1)
				return nil // other collectors keep running
			}

			if lerr := r.st.Runs.Complete(gctx, runID, stats); lerr != nil {
				cLog.Error("failed to record run completion", zap.Error(lerr))
			}

			cLog.Info("collection complete",
				zap.Int64("run_id", runID),
				zap.Int64("found", stats.Found),
				zap.Int64("added", stats.Added),
				zap.Int64("updated", stats.Updated),
				zap.Int("record_errors", len(stats.Errors)),
				zap.Duration("elapsed", elapsed),
			)
			completed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("runner finished",
		zap.Int64("completed", completed.Load()),
		zap.Int64("failed", failed.Load()),
	)

	if n := failed.Load(); n > 0 {
		return eris.Errorf("runner: %d of %d collectors failed", n, len(collectors))
	}
	return nil
}
