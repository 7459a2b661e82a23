// Package mocks provides shared test doubles for diffgen packages.
package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Target implements target.Target for testing.
// Use NewTarget() to create instances with a fluent builder API.
type Target struct {
	name         string
	path         string
	delay        time.Duration
	hang         bool
	preflightErr error

	// InvokeFunc is called by Invoke. If nil, Invoke returns a None success.
	InvokeFunc func(ctx context.Context, args []value.Value) (tests.Outcome, error)

	// Invocation tracking (thread-safe)
	invokeCount int32
	mu          sync.Mutex
	calls       [][]value.Value
}

// NewTarget creates a new mock target with the given name.
func NewTarget(name string) *Target {
	return &Target{
		name: name,
		path: name,
	}
}

// WithPath sets the target path.
func (m *Target) WithPath(path string) *Target {
	m.path = path
	return m
}

// WithFunc makes Invoke return fn(args) as a successful outcome.
func (m *Target) WithFunc(fn func(args []value.Value) value.Value) *Target {
	m.InvokeFunc = func(ctx context.Context, args []value.Value) (tests.Outcome, error) {
		return tests.Success(fn(args)), nil
	}
	return m
}

// WithOutcomeFunc makes Invoke return fn(args).
func (m *Target) WithOutcomeFunc(fn func(args []value.Value) tests.Outcome) *Target {
	m.InvokeFunc = func(ctx context.Context, args []value.Value) (tests.Outcome, error) {
		return fn(args), nil
	}
	return m
}

// WithOutcome makes every Invoke return o.
func (m *Target) WithOutcome(o tests.Outcome) *Target {
	return m.WithOutcomeFunc(func([]value.Value) tests.Outcome { return o })
}

// WithInvokeFunc sets the function called by Invoke.
func (m *Target) WithInvokeFunc(fn func(ctx context.Context, args []value.Value) (tests.Outcome, error)) *Target {
	m.InvokeFunc = fn
	return m
}

// WithDelay makes every Invoke wait d (or until ctx ends) before answering.
func (m *Target) WithDelay(d time.Duration) *Target {
	m.delay = d
	return m
}

// WithHang makes every Invoke block until ctx ends.
func (m *Target) WithHang() *Target {
	m.hang = true
	return m
}

// WithPreflightError makes Preflight fail with err.
func (m *Target) WithPreflightError(err error) *Target {
	m.preflightErr = err
	return m
}

// target.Target interface implementation

func (m *Target) Name() string            { return m.name }
func (m *Target) Path() string            { return m.path }
func (m *Target) Type() target.TargetType { return target.TypeFunc }

func (m *Target) Preflight(ctx context.Context) error {
	return m.preflightErr
}

func (m *Target) Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error) {
	atomic.AddInt32(&m.invokeCount, 1)
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()

	if m.hang || m.delay > 0 {
		var wait <-chan time.Time
		if !m.hang {
			timer := time.NewTimer(m.delay)
			defer timer.Stop()
			wait = timer.C
		}
		select {
		case <-wait:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return tests.Timeout(), nil
			}
			return tests.Outcome{}, ctx.Err()
		}
	}

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, args)
	}
	return tests.Success(value.None()), nil
}

// Test inspection methods

// InvokeCount returns the number of times Invoke was called.
func (m *Target) InvokeCount() int32 {
	return atomic.LoadInt32(&m.invokeCount)
}

// Calls returns the argument tuples Invoke received, in call order.
func (m *Target) Calls() [][]value.Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]value.Value, len(m.calls))
	copy(result, m.calls)
	return result
}

// Reset clears invocation tracking state.
func (m *Target) Reset() {
	atomic.StoreInt32(&m.invokeCount, 0)
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}
