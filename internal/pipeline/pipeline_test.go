package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AndreyAkinshin/diffgen/internal/config"
	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/node"
	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/testing/mocks"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

func addConfig(numRandom int, seed uint64) *config.Config {
	ints := func() node.Node {
		return &node.IntNode{Exhaustive: []int64{0, 1}, Random: []int64{-50, -7, 0, 3, 9, 100}}
	}
	return &config.Config{
		ParsedSpec: config.ParsedSpec{
			FuncName:  "add",
			Params:    []node.Node{ints(), ints()},
			NumRandom: numRandom,
		},
		Seed:       seed,
		HasSeed:    true,
		Timeout:    time.Second,
		Comparison: tests.DefaultComparisonConfig(),
	}
}

func add(args []value.Value) (value.Value, error) {
	return value.Int(args[0].AsInt() + args[1].AsInt()), nil
}

func candidates() []target.Target {
	return []target.Target{
		target.NewFunc("zero.py", func([]value.Value) (value.Value, error) { return value.Int(0), nil }),
		target.NewFunc("sub.py", func(a []value.Value) (value.Value, error) {
			return value.Int(a[0].AsInt() - a[1].AsInt()), nil
		}),
		target.NewFunc("twin.py", add),
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	var stages []Stage
	res, err := Run(context.Background(), addConfig(0, 1), target.NewFunc("ref.py", add), candidates(), Options{
		OnStage: func(s Stage) { stages = append(stages, s) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]Stage{StageBuild, StageExpected, StageTest, StageConcise}, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	if len(res.Base) != 4 || res.Exhaustive != 4 {
		t.Errorf("base = %d (exhaustive %d), want 4 (4)", len(res.Base), res.Exhaustive)
	}
	// (0, 1) kills zero.py and sub.py at once.
	calls := make([]string, len(res.Report.Tests))
	for i, e := range res.Report.Tests {
		calls[i] = e.Call
	}
	if diff := cmp.Diff([]string{"add(0, 1)"}, calls); diff != "" {
		t.Errorf("concise set mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"twin.py"}, res.Report.Survivors); diff != "" {
		t.Errorf("survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SameSeedSameReport(t *testing.T) {
	t.Parallel()
	render := func() string {
		res, err := Run(context.Background(), addConfig(20, 99), target.NewFunc("ref.py", add), candidates(), Options{})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		var buf bytes.Buffer
		if err := res.Report.WriteJSON(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if a, b := render(), render(); a != b {
		t.Errorf("reports differ for the same seed:\n%s\n%s", a, b)
	}
}

func TestRun_DrawsSeedWhenUnset(t *testing.T) {
	t.Parallel()
	cfg := addConfig(5, 0)
	cfg.HasSeed = false
	res, err := Run(context.Background(), cfg, target.NewFunc("ref.py", add), candidates(), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Report.Seed != res.Seed {
		t.Errorf("report seed = %d, want %d", res.Report.Seed, res.Seed)
	}
}

func TestRun_PreflightFailureStopsBeforeInvoking(t *testing.T) {
	t.Parallel()
	ref := mocks.NewTarget("ref.py").WithFunc(func(a []value.Value) value.Value {
		return value.Int(a[0].AsInt() + a[1].AsInt())
	})
	bad := mocks.NewTarget("bad.py").WithPreflightError(errors.Toolingf("bad.py", "function %q not defined", "add"))

	_, err := Run(context.Background(), addConfig(0, 1), ref, []target.Target{bad}, Options{})
	if !errors.IsKind(err, errors.KindTooling) {
		t.Fatalf("Run() error = %v, want tooling error", err)
	}
	if got := ref.InvokeCount(); got != 0 {
		t.Errorf("reference invoked %d times before preflight failed", got)
	}
}

func TestRun_ExhaustiveTooLarge(t *testing.T) {
	t.Parallel()
	cfg := addConfig(0, 1)
	cfg.MaxExhaustive = 3

	_, err := Run(context.Background(), cfg, target.NewFunc("ref.py", add), candidates(), Options{})
	if got := errors.GetExitCode(err); got != errors.ExitGenerationError {
		t.Errorf("exit code = %d, want %d (err = %v)", got, errors.ExitGenerationError, err)
	}
}
