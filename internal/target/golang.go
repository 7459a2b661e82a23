package target

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"regexp"
	"sync"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

var (
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	packageClause  = regexp.MustCompile(`(?m)^\s*package\s+(\w+)`)
	defaultPackage = "main"
)

// GoTarget runs a Go source file under yaegi in a fresh child process per
// invocation. The child is the running executable started with InvokeCommand, so
// package-level state never survives between invocations and a fatal runtime
// error or a hang only ends that child.
type GoTarget struct {
	name  string
	path  string
	fname string
}

// NewGo creates a target for the Go source file at path exposing fname.
func NewGo(path, fname string) *GoTarget {
	return &GoTarget{
		name:  filepath.Base(path),
		path:  path,
		fname: fname,
	}
}

func (t *GoTarget) Name() string     { return t.name }
func (t *GoTarget) Path() string     { return t.path }
func (t *GoTarget) Type() TargetType { return TypeGo }

// hostExecutable is the binary started to host Go invocations.
var hostExecutable = sync.OnceValues(os.Executable)

func (t *GoTarget) command(ctx context.Context, extra ...string) (*exec.Cmd, error) {
	exe, err := hostExecutable()
	if err != nil {
		return nil, errors.Tooling(t.name, err, "cannot locate host executable")
	}
	args := append([]string{InvokeCommand}, extra...)
	args = append(args, "--", t.path, t.fname)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Env = append(os.Environ(), "GOTRACEBACK=none")
	return cmd, nil
}

// Preflight interprets the source once in a child process and checks that fname
// is a function.
func (t *GoTarget) Preflight(ctx context.Context) error {
	cmd, err := t.command(ctx, "--check")
	if err != nil {
		return err
	}
	o, err := runHosted(ctx, t.name, cmd, nil)
	if err != nil {
		return err
	}
	if !o.OK() {
		return errors.Toolingf(t.name, "cannot load implementation: %s", o)
	}
	return nil
}

// Invoke converts args to the function's parameter types, calls it and converts
// the results back, all inside the child. A trailing error result that is non-nil
// is an exception outcome; a single remaining result is the value, several are a
// tuple, none is None. A child that dies is a crash outcome.
func (t *GoTarget) Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error) {
	cmd, err := t.command(ctx)
	if err != nil {
		return tests.Outcome{}, err
	}
	return runHosted(ctx, t.name, cmd, args)
}

// convertArgs converts args to the parameter types of ft.
func convertArgs(name, fname string, ft reflect.Type, args []value.Value) ([]reflect.Value, error) {
	if ft.IsVariadic() || ft.NumIn() != len(args) {
		return nil, errors.Toolingf(name, "%s has signature %s, want %d parameters", fname, ft, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		rv, err := value.ToGo(a, ft.In(i))
		if err != nil {
			return nil, errors.Tooling(name, err, fmt.Sprintf("argument %d of %s", i, fname))
		}
		in[i] = rv
	}
	return in, nil
}

func resultOutcome(ft reflect.Type, out []reflect.Value) tests.Outcome {
	if n := ft.NumOut(); n > 0 && ft.Out(n-1).Implements(errorType) {
		if last := out[n-1]; !last.IsNil() {
			return errorOutcome(last.Interface().(error))
		}
		out = out[:n-1]
	}

	vals := make([]value.Value, len(out))
	for i, rv := range out {
		v, err := value.FromGo(rv.Interface())
		if err != nil {
			v = value.Opaque(fmt.Sprintf("%v", rv.Interface()))
		}
		vals[i] = v
	}
	switch len(vals) {
	case 0:
		return tests.Success(value.None())
	case 1:
		return tests.Success(vals[0])
	default:
		return tests.Success(value.Tuple(vals...))
	}
}

// wrapSource returns src with a package clause and the package name. Code without
// one is placed in package main.
func wrapSource(src string) (string, string) {
	if m := packageClause.FindStringSubmatch(src); m != nil {
		return src, m[1]
	}
	return "package " + defaultPackage + "\n\n" + src, defaultPackage
}
