package target

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// callResult is what a guarded call reports back to its waiter.
type callResult[T any] struct {
	val      T
	panicked bool
	recov    any
}

// callGuarded runs fn in its own goroutine and waits for it or for ctx. Panics in
// fn are recovered and reported. When ctx ends first the goroutine is abandoned:
// Go cannot preempt it, so a function that never returns keeps its goroutine.
//
// The bool result is false when ctx ended before fn returned.
func callGuarded[T any](ctx context.Context, fn func() T) (callResult[T], bool) {
	done := make(chan callResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult[T]{panicked: true, recov: r}
			}
		}()
		done <- callResult[T]{val: fn()}
	}()

	select {
	case r := <-done:
		return r, true
	case <-ctx.Done():
		return callResult[T]{}, false
	}
}

// deadlineOutcome maps an ended ctx to a timeout outcome, or to an error when the
// run was cancelled rather than timed out.
func deadlineOutcome(ctx context.Context, start time.Time) (tests.Outcome, error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		o := tests.Timeout()
		o.Duration = time.Since(start)
		return o, nil
	}
	return tests.Outcome{}, ctx.Err()
}

// panicOutcome converts a recovered panic into an exception outcome. The class is
// the dynamic type of the panic value, e.g. "runtime.boundsError" or "string".
func panicOutcome(r any) tests.Outcome {
	class := "panic"
	if r != nil {
		class = reflect.TypeOf(r).String()
	}
	return tests.Exception(class, fmt.Sprint(r))
}

// errorOutcome converts an error returned by an implementation into an exception
// outcome classed by the error's dynamic type.
func errorOutcome(err error) tests.Outcome {
	return tests.Exception(reflect.TypeOf(err).String(), err.Error())
}
