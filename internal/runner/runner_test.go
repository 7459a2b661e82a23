package runner

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestParallelWorkers_Default(t *testing.T) {
	t.Setenv(EnvParallel, "")

	workers := ParallelWorkers(0, zap.NewNop())
	if workers < 1 {
		t.Errorf("ParallelWorkers() = %d, want >= 1", workers)
	}
}

func TestParallelWorkers_Configured(t *testing.T) {
	t.Setenv(EnvParallel, "")

	if workers := ParallelWorkers(3, zap.NewNop()); workers != 3 {
		t.Errorf("ParallelWorkers(3) = %d, want 3", workers)
	}
}

func TestParallelWorkers_FromEnv(t *testing.T) {
	t.Setenv(EnvParallel, "4")

	if workers := ParallelWorkers(2, zap.NewNop()); workers != 4 {
		t.Errorf("ParallelWorkers() = %d, want 4 (env overrides config)", workers)
	}
}

func TestParallelWorkers_InvalidEnv(t *testing.T) {
	tests := []string{
		"invalid",
		"0",
		"-1",
		"257",
	}

	for _, val := range tests {
		t.Run(val, func(t *testing.T) {
			t.Setenv(EnvParallel, val)

			if workers := ParallelWorkers(5, zap.NewNop()); workers != 5 {
				t.Errorf("ParallelWorkers(5) = %d, want 5 (fallback to config)", workers)
			}
		})
	}
}

func TestParallelWorkers_Boundaries(t *testing.T) {
	for _, tt := range []struct {
		env  string
		want int
	}{{"1", 1}, {"256", 256}} {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(EnvParallel, tt.env)
			if workers := ParallelWorkers(0, zap.NewNop()); workers != tt.want {
				t.Errorf("ParallelWorkers() = %d, want %d", workers, tt.want)
			}
		})
	}
}

func TestCombineErrors(t *testing.T) {
	t.Parallel()

	if err := combineErrors(nil); err != nil {
		t.Errorf("combineErrors(nil) = %v, want nil", err)
	}

	original := os.ErrNotExist
	if err := combineErrors([]error{original}); err != original {
		t.Errorf("combineErrors([1]) = %v, want original error", err)
	}

	err := combineErrors([]error{errors.New("error one"), errors.New("error two")})
	if !strings.Contains(err.Error(), "error one") || !strings.Contains(err.Error(), "error two") {
		t.Errorf("error message = %q, want both errors", err.Error())
	}
}

func TestPool_RunExecutesAll(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv(EnvParallel, "4")

	p := New(Options{})
	slots := make([]int, 100)
	err := p.Run(context.Background(), len(slots), func(ctx context.Context, i int) error {
		slots[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, v := range slots {
		if v != i*i {
			t.Fatalf("slots[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestPool_RunRespectsLimit(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv(EnvParallel, "")

	p := New(Options{Workers: 2})
	var running, peak int32
	err := p.Run(context.Background(), 20, func(ctx context.Context, i int) error {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestPool_FailFastCancels(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv(EnvParallel, "1")

	testErr := errors.New("test error")
	var started int32
	p := New(Options{})
	err := p.Run(context.Background(), 10, func(ctx context.Context, i int) error {
		atomic.AddInt32(&started, 1)
		if i == 0 {
			return testErr
		}
		return ctx.Err()
	})

	if !errors.Is(err, testErr) {
		t.Errorf("Run() error = %v, want %v", err, testErr)
	}
	if got := atomic.LoadInt32(&started); got == 10 {
		t.Errorf("started = %d, want fewer than 10 after fail-fast", got)
	}
}

func TestPool_ContinueCollectsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Setenv(EnvParallel, "4")

	var calls int32
	p := New(Options{Continue: true})
	err := p.Run(context.Background(), 6, func(ctx context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		if i%2 == 0 {
			return errors.New("even")
		}
		return nil
	})

	if err == nil {
		t.Error("Run() expected error")
	}
	if calls != 6 {
		t.Errorf("calls = %d, want 6 with Continue", calls)
	}
}

func TestPool_ParentCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Options{Workers: 2})
	err := p.Run(ctx, 5, func(ctx context.Context, i int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
