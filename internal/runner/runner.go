// Package runner provides a bounded worker pool for independent units of work.
package runner

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EnvParallel overrides the number of workers.
const EnvParallel = "DIFFGEN_PARALLEL"

const (
	// minParallelWorkers ensures at least one worker, even if runtime.NumCPU()
	// reports 0 in a restricted environment.
	minParallelWorkers = 1

	// maxParallelWorkers caps the pool size. Invocations are mostly subprocess
	// spawns, so beyond this the scheduler and process table are the bottleneck.
	maxParallelWorkers = 256
)

// Options configures a Pool.
type Options struct {
	// Workers is the configured pool size. Zero means runtime.NumCPU().
	// DIFFGEN_PARALLEL, when valid, takes precedence.
	Workers int

	// Continue keeps dispatching after a task fails and returns all task errors
	// combined. By default the first error cancels the remaining tasks.
	Continue bool

	Logger *zap.Logger
}

// Pool runs indexed tasks on a bounded number of goroutines.
type Pool struct {
	workers         int
	continueOnError bool
	logger          *zap.Logger
}

// New creates a pool.
func New(opts Options) *Pool {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		workers:         ParallelWorkers(opts.Workers, logger),
		continueOnError: opts.Continue,
		logger:          logger,
	}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn(ctx, i) for every i in [0, n), at most Workers() at a time, and
// waits for all started calls to return.
//
// Tasks must not share mutable state except through index-keyed slots. If ctx is
// cancelled before every task was dispatched, Run returns ctx's error.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	p.logger.Debug("dispatching tasks", zap.Int("tasks", n), zap.Int("workers", p.workers))

	if p.continueOnError {
		return p.runAll(ctx, n, fn)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pool) runAll(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	var mu sync.Mutex
	var errs []error

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := fn(ctx, i); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := combineErrors(errs); err != nil {
		return err
	}
	return ctx.Err()
}

// defaultWorkerCount returns the default number of parallel workers based on CPU count.
func defaultWorkerCount() int {
	return max(minParallelWorkers, runtime.NumCPU())
}

// ParallelWorkers resolves the pool size: DIFFGEN_PARALLEL if set and valid,
// otherwise configured if positive, otherwise runtime.NumCPU(). Invalid
// environment values log a warning and are ignored.
func ParallelWorkers(configured int, logger *zap.Logger) int {
	fallback := defaultWorkerCount()
	if configured >= minParallelWorkers && configured <= maxParallelWorkers {
		fallback = configured
	}

	env := os.Getenv(EnvParallel)
	if env == "" {
		return fallback
	}

	n, err := strconv.Atoi(env)
	if err != nil {
		logger.Warn("invalid "+EnvParallel+" value (not a number), using default",
			zap.String("value", env), zap.Int("workers", fallback))
		return fallback
	}

	if n < minParallelWorkers || n > maxParallelWorkers {
		logger.Warn(EnvParallel+" out of range, using default",
			zap.Int("value", n), zap.Int("min", minParallelWorkers), zap.Int("max", maxParallelWorkers))
		return fallback
	}

	return n
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
