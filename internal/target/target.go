// Package target provides the Target interface for implementations under test and
// the registry that discovers them.
//
// A Target is an injected capability: the differential tester only calls Invoke
// and never knows whether the implementation is a Python subprocess, interpreted
// Go source or an in-process function.
package target

import (
	"context"

	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// TargetType represents how an implementation is executed.
type TargetType string

const (
	// TypePython runs a Python source file in a subprocess per invocation.
	TypePython TargetType = "python"
	// TypeGo interprets a Go source file in a child process per invocation.
	TypeGo TargetType = "go"
	// TypeFunc calls a Go function directly.
	TypeFunc TargetType = "func"
)

// Target is an implementation of the function under test.
type Target interface {
	Name() string     // Stable identifier (file name for discovered targets)
	Path() string     // Source path, empty for in-process targets
	Type() TargetType // How the implementation is executed

	// Invoke calls the implementation with one input tuple. Failures of the
	// implementation itself (exceptions, crashes, deadline expiry) are reported
	// as outcomes. A non-nil error means the implementation could not be invoked
	// at all, or ctx was cancelled.
	Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error)
}

// Preflighter is implemented by targets that can check, before any invocation,
// that the implementation is loadable and defines the function under test.
type Preflighter interface {
	Preflight(ctx context.Context) error
}

// Preflight runs t's preflight check if it has one.
func Preflight(ctx context.Context, t Target) error {
	if p, ok := t.(Preflighter); ok {
		return p.Preflight(ctx)
	}
	return nil
}
