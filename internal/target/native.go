package target

import (
	"context"
	"reflect"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Native is an in-process implementation backed by a compiled Go function of
// any signature. Arguments and results are converted the same way as for
// interpreted Go sources.
type Native struct {
	name string
	fn   reflect.Value
}

// NewNative wraps fn, which must be a non-nil function.
func NewNative(name string, fn any) (*Native, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, errors.Toolingf(name, "%T is not a function", fn)
	}
	return &Native{name: name, fn: rv}, nil
}

func (n *Native) Name() string     { return n.name }
func (n *Native) Path() string     { return "" }
func (n *Native) Type() TargetType { return TypeFunc }

// Invoke converts args, calls the function and converts its results.
func (n *Native) Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error) {
	in, err := convertArgs(n.name, n.name, n.fn.Type(), args)
	if err != nil {
		return tests.Outcome{}, err
	}

	start := time.Now()
	r, ok := callGuarded(ctx, func() []reflect.Value { return n.fn.Call(in) })
	if !ok {
		return deadlineOutcome(ctx, start)
	}

	var o tests.Outcome
	if r.panicked {
		o = panicOutcome(r.recov)
	} else {
		o = resultOutcome(n.fn.Type(), r.val)
	}
	o.Duration = time.Since(start)
	return o, nil
}
