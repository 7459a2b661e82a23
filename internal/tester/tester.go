// Package tester runs the reference and candidate implementations over a base
// test set and records which candidates each test case kills.
package tester

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/runner"
	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// DefaultTimeout bounds a single invocation when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Options configures a Tester.
type Options struct {
	// Timeout bounds each invocation. Exceeding it is a timeout outcome.
	Timeout time.Duration

	// Workers is the number of concurrent invocations (see runner.ParallelWorkers).
	Workers int

	Comparison tests.ComparisonConfig
	Logger     *zap.Logger
}

// Tester executes one reference and a fixed list of candidates.
type Tester struct {
	fname      string
	reference  target.Target
	candidates []target.Target
	timeout    time.Duration
	comparison tests.ComparisonConfig
	pool       *runner.Pool
	logger     *zap.Logger
}

// New creates a tester for function fname.
func New(fname string, reference target.Target, candidates []target.Target, opts Options) *Tester {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tester{
		fname:      fname,
		reference:  reference,
		candidates: candidates,
		timeout:    timeout,
		comparison: opts.Comparison,
		pool:       runner.New(runner.Options{Workers: opts.Workers, Logger: logger}),
		logger:     logger,
	}
}

// Candidates returns the candidate names in kill-record order.
func (t *Tester) Candidates() []string {
	names := make([]string, len(t.candidates))
	for i, c := range t.candidates {
		names[i] = c.Name()
	}
	return names
}

// Preflight checks that the reference and every candidate can be invoked.
func (t *Tester) Preflight(ctx context.Context) error {
	for _, tg := range append([]target.Target{t.reference}, t.candidates...) {
		if err := target.Preflight(ctx, tg); err != nil {
			return asTooling(tg, err)
		}
	}
	return nil
}

// Run computes expected results and then runs all candidates.
func (t *Tester) Run(ctx context.Context, cases []*tests.TestCase) (*tests.KillRecord, error) {
	if err := t.ComputeExpectedResults(ctx, cases); err != nil {
		return nil, err
	}
	return t.RunTests(ctx, cases)
}

// ComputeExpectedResults invokes the reference once per test case and attaches
// the outcome as the case's expected outcome. Cases that already carry one are
// left alone. Any failure to invoke the reference aborts the whole computation.
func (t *Tester) ComputeExpectedResults(ctx context.Context, cases []*tests.TestCase) error {
	start := time.Now()
	err := t.pool.Run(ctx, len(cases), func(ctx context.Context, i int) error {
		tc := cases[i]
		if tc.Expected != nil {
			return nil
		}
		out, err := t.invoke(ctx, t.reference, tc.Inputs)
		if err != nil {
			return err
		}
		if !out.OK() {
			t.logger.Debug("reference fails on input",
				zap.String("call", tc.Call(t.fname)),
				zap.Stringer("outcome", out))
		}
		tc.Expected = &out
		return nil
	})
	if err != nil {
		return err
	}
	t.logger.Info("computed expected results",
		zap.String("reference", t.reference.Name()),
		zap.Int("cases", len(cases)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// RunTests invokes every candidate on every test case and classifies the
// outcomes against the expected ones. Every (case, candidate) pair writes its
// own outcome slot, so pairs run concurrently without further locking.
func (t *Tester) RunTests(ctx context.Context, cases []*tests.TestCase) (*tests.KillRecord, error) {
	for _, tc := range cases {
		if tc.Expected == nil {
			return nil, errors.Newf("no expected result for %s", tc.Call(t.fname))
		}
	}

	record := tests.NewKillRecord(cases, t.Candidates())
	nc := len(t.candidates)
	if nc == 0 {
		return record, nil
	}

	start := time.Now()
	err := t.pool.Run(ctx, len(cases)*nc, func(ctx context.Context, k int) error {
		i, j := k/nc, k%nc
		out, err := t.invoke(ctx, t.candidates[j], cases[i].Inputs)
		if err != nil {
			return err
		}
		record.Outcomes[i][j] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.Classify(t.comparison)
	t.logger.Info("ran candidates",
		zap.Int("candidates", nc),
		zap.Int("cases", len(cases)),
		zap.Int("killed", len(record.Killed())),
		zap.Duration("elapsed", time.Since(start)))
	return record, nil
}

// invoke runs one implementation on one input tuple under the per-invocation
// timeout. A deadline is a timeout outcome; cancellation of ctx itself is
// returned as ctx's error.
func (t *Tester) invoke(ctx context.Context, tg target.Target, args []value.Value) (tests.Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	out, err := tg.Invoke(callCtx, args)
	if err != nil {
		if ctx.Err() != nil {
			return tests.Outcome{}, ctx.Err()
		}
		if stderrors.Is(err, context.DeadlineExceeded) && callCtx.Err() != nil {
			out, err = tests.Timeout(), nil
		} else {
			return tests.Outcome{}, asTooling(tg, err)
		}
	}
	if out.Duration == 0 {
		out.Duration = time.Since(start)
	}
	if out.Status == tests.StatusTimeout {
		t.logger.Debug("invocation timed out",
			zap.String("target", tg.Name()),
			zap.Duration("timeout", t.timeout))
	}
	return out, nil
}

func asTooling(tg target.Target, err error) error {
	if errors.IsKind(err, errors.KindTooling) {
		return err
	}
	return errors.Tooling(tg.Name(), err, "cannot invoke implementation")
}
