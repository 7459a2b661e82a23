// Package pipeline runs a full generation: base set, differential testing and
// concise set selection.
package pipeline

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/AndreyAkinshin/diffgen/internal/basegen"
	"github.com/AndreyAkinshin/diffgen/internal/concise"
	"github.com/AndreyAkinshin/diffgen/internal/config"
	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/report"
	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/tester"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// Stage names a step of the pipeline, for progress callbacks.
type Stage string

const (
	StageBuild    Stage = "build"
	StageExpected Stage = "expected"
	StageTest     Stage = "test"
	StageConcise  Stage = "concise"
)

// Options configures a run.
type Options struct {
	Logger *zap.Logger

	// OnStage, when set, is called as each stage starts.
	OnStage func(Stage)
}

// Result holds everything a run produced.
type Result struct {
	Seed       uint64
	Base       []*tests.TestCase
	Exhaustive int
	Record     *tests.KillRecord
	Concise    *concise.Result
	Report     *report.Report
}

// Run generates the concise test set for cfg. When cfg has no seed one is drawn
// and recorded in the result so the run can be repeated.
func Run(ctx context.Context, cfg *config.Config, reference target.Target, candidates []target.Target, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stage := opts.OnStage
	if stage == nil {
		stage = func(Stage) {}
	}

	seed := cfg.Seed
	if !cfg.HasSeed {
		seed = rand.Uint64()
	}

	t := tester.New(cfg.FuncName, reference, candidates, tester.Options{
		Timeout:    cfg.Timeout,
		Workers:    cfg.Workers,
		Comparison: cfg.Comparison,
		Logger:     logger,
	})
	if err := t.Preflight(ctx); err != nil {
		return nil, err
	}

	stage(StageBuild)
	b := basegen.New(cfg.Params, basegen.Options{
		NumRandom:     cfg.NumRandom,
		Seed:          seed,
		MaxExhaustive: cfg.MaxExhaustive,
		Logger:        logger,
	})
	base, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	// Build succeeded, so the exhaustive count is known to fit.
	n, _ := b.ExhaustiveCount()
	exhaustive := int(n)
	logger.Info("built base test set",
		zap.Int("exhaustive", exhaustive),
		zap.Int("random", len(base)-exhaustive),
		zap.Uint64("seed", seed))

	stage(StageExpected)
	if err := t.ComputeExpectedResults(ctx, base); err != nil {
		return nil, err
	}

	stage(StageTest)
	record, err := t.RunTests(ctx, base)
	if err != nil {
		return nil, err
	}

	stage(StageConcise)
	result := concise.Generate(record)
	if err := concise.Verify(record.Kills, result.Indices); err != nil {
		return nil, errors.Generation(err, "concise set is not a valid cover")
	}
	logger.Info("selected concise test set",
		zap.Int("size", len(result.Indices)),
		zap.Int("killed", len(result.Covered)),
		zap.Strings("survivors", result.Survivors))

	rep, err := report.New(report.Input{
		FuncName:   cfg.FuncName,
		Reference:  reference.Name(),
		Seed:       seed,
		Exhaustive: exhaustive,
		Random:     len(base) - exhaustive,
		Record:     record,
		Result:     result,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot build report")
	}

	return &Result{
		Seed:       seed,
		Base:       base,
		Exhaustive: exhaustive,
		Record:     record,
		Concise:    result,
		Report:     rep,
	}, nil
}
