package target

import (
	"context"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Func is an in-process implementation backed by a Go function.
type Func struct {
	name string
	fn   func(args []value.Value) (value.Value, error)
}

// NewFunc wraps fn as a target. A returned error is recorded as an exception
// outcome, as is a panic.
func NewFunc(name string, fn func(args []value.Value) (value.Value, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string     { return f.name }
func (f *Func) Path() string     { return "" }
func (f *Func) Type() TargetType { return TypeFunc }

type funcReturn struct {
	v   value.Value
	err error
}

// Invoke calls the function, racing it against ctx.
func (f *Func) Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error) {
	start := time.Now()
	r, ok := callGuarded(ctx, func() funcReturn {
		v, err := f.fn(args)
		return funcReturn{v: v, err: err}
	})
	if !ok {
		return deadlineOutcome(ctx, start)
	}

	var o tests.Outcome
	switch {
	case r.panicked:
		o = panicOutcome(r.recov)
	case r.val.err != nil:
		o = errorOutcome(r.val.err)
	default:
		o = tests.Success(r.val.v)
	}
	o.Duration = time.Since(start)
	return o, nil
}
