// Package montecarlo runs independent randomized trials of a fund's cash
// flows, perturbing distributions with multiplicative uniform noise.
package montecarlo

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/observability"
)

// ProgressFunc is called after each completed trial. It may be called
// concurrently from several workers.
type ProgressFunc func(done, total int)

// Options contains configuration for creating an Engine.
type Options struct {
	Workers  int // <= 0 uses GOMAXPROCS
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Progress ProgressFunc
}

// Engine executes Monte Carlo runs.
// An Engine holds no per-run state and may be shared across goroutines.
type Engine struct {
	workers  int
	logger   *zap.Logger
	metrics  *observability.Metrics
	progress ProgressFunc
}

// NewEngine creates a Monte Carlo engine.
func NewEngine(opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		workers:  workers,
		logger:   logger.WithComponent(logger.OrNop(opts.Logger), "montecarlo"),
		metrics:  opts.Metrics,
		progress: opts.Progress,
	}
}

// Workers returns the configured parallelism.
func (e *Engine) Workers() int {
	return e.workers
}

// WithProgress returns a copy of the engine reporting progress to fn.
func (e *Engine) WithProgress(fn ProgressFunc) *Engine {
	cp := *e
	cp.progress = fn
	return &cp
}

// Run executes params.NSimulations trials and returns them in index order.
// Steps:
//  1. Validate parameters (abort before any trial on ErrValidation)
//  2. Resolve the base seed
//  3. Fan trials out over workers, each with a private generator
//  4. Wait for every trial (full barrier)
//
// Cancelling ctx abandons the whole run; no partial result is returned.
func (e *Engine) Run(ctx context.Context, params domain.SimulationParameters) ([]*domain.Trial, error) {
	start := time.Now()
	params = params.WithDefaults()

	// 1. Validate parameters
	if err := params.Validate(); err != nil {
		e.metrics.RecordRun(observability.StatusInvalid, 0, 0)
		return nil, err
	}

	// 2. Resolve the base seed
	baseSeed, err := BaseSeed(params)
	if err != nil {
		e.metrics.RecordRun(observability.StatusFailed, 0, time.Since(start).Seconds())
		return nil, err
	}

	n := params.NSimulations
	p := newPlan(params)
	trials := make([]*domain.Trial, n)

	e.logger.Debug("starting run",
		zap.Int("trials", n),
		zap.Int("years", params.Years),
		zap.Int("workers", e.workers),
		zap.Bool("seeded", params.Seeded()),
	)

	// 3. Fan out: contiguous batches, one goroutine per batch.
	// Each goroutine writes only its own slots of trials.
	g, gctx := errgroup.WithContext(ctx)
	batch := (n + e.workers - 1) / e.workers
	var done atomic.Int64

	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				t0 := time.Now()
				trials[i] = p.trial(i, DeriveTrialSeed(baseSeed, i))
				e.metrics.RecordTrial(time.Since(t0).Seconds())

				completed := done.Add(1)
				if e.progress != nil {
					e.progress(int(completed), n)
				}
			}
			return nil
		})
	}

	// 4. Barrier
	if err := g.Wait(); err != nil {
		e.metrics.RecordRun(observability.StatusFailed, int(done.Load()), time.Since(start).Seconds())
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn("run abandoned", zap.Error(err), zap.Int64("completed", done.Load()))
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.metrics.RecordRun(observability.StatusFailed, n, time.Since(start).Seconds())
		return nil, err
	}

	elapsed := time.Since(start)
	e.metrics.RecordRun(observability.StatusSuccess, n, elapsed.Seconds())
	e.logger.Debug("run finished", zap.Int("trials", n), zap.Duration("elapsed", elapsed))

	return trials, nil
}
