package target

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// InvokeCommand is the hidden subcommand under which a process hosts a single Go
// invocation:
//
//	diffgen __invoke [--check] PATH FNAME < ARGS_JSON
//
// Every binary that opens Go targets must dispatch it to ServeGo, test binaries
// included.
const InvokeCommand = "__invoke"

// hostMaxStack bounds the goroutine stack of a hosting process, so unbounded
// recursion in interpreted code ends in a crash rather than running into the
// invocation timeout.
const hostMaxStack = 64 << 20

// ServeGo interprets the Go source at path in a fresh interpreter, calls fname
// with the tagged arguments read from in and writes one response line to out.
// With check set nothing is read or called: the response only tells whether the
// source loads and fname is a function.
//
// Implementation failures are part of the response. The returned error only
// reports a failure to write it.
func ServeGo(path, fname string, check bool, in io.Reader, out io.Writer) error {
	debug.SetMaxStack(hostMaxStack)

	data, err := json.Marshal(serveGo(path, fname, check, in))
	if err != nil {
		return err
	}
	// Output the interpreted code wrote to the real stdout may lack a newline.
	_, err = fmt.Fprintf(out, "\n%s\n", data)
	return err
}

func serveGo(path, fname string, check bool, in io.Reader) response {
	fn, err := loadGo(path, fname)
	if err != nil {
		return response{Status: statusError, Message: err.Error()}
	}
	if check {
		none := value.None()
		return response{Status: statusOK, Value: &none}
	}

	var args []value.Value
	if err := json.NewDecoder(in).Decode(&args); err != nil {
		return response{Status: statusError, Message: fmt.Sprintf("cannot decode arguments: %v", err)}
	}
	argv, err := convertArgs(filepath.Base(path), fname, fn.Type(), args)
	if err != nil {
		return response{Status: statusError, Message: err.Error()}
	}
	return outcomeResponse(callGo(fn, argv))
}

// callGo calls fn on the current goroutine; a panic becomes an exception outcome.
func callGo(fn reflect.Value, in []reflect.Value) (o tests.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = panicOutcome(r)
		}
	}()
	return resultOutcome(fn.Type(), fn.Call(in))
}

func outcomeResponse(o tests.Outcome) response {
	if o.OK() {
		v := o.Value
		return response{Status: statusOK, Value: &v}
	}
	return response{Status: statusException, Class: o.Class, Message: o.Message}
}

// loadGo interprets the source at path and resolves fname. Anything the code
// prints to stdout is discarded.
func loadGo(path, fname string) (reflect.Value, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return reflect.Value{}, errors.Tooling(name, err, "cannot read source")
	}
	src, pkg := wrapSource(string(data))

	i := interp.New(interp.Options{Stdout: io.Discard, Stderr: os.Stderr})
	if err := i.Use(stdlib.Symbols); err != nil {
		return reflect.Value{}, errors.Tooling(name, err, "failed to load stdlib")
	}
	if _, err := i.Eval(src); err != nil {
		return reflect.Value{}, errors.Tooling(name, err, "code evaluation failed")
	}
	fn, err := i.Eval(pkg + "." + fname)
	if err != nil {
		return reflect.Value{}, errors.Tooling(name, err, fmt.Sprintf("function %q not found", fname))
	}
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, errors.Toolingf(name, "%s is a %s, not a function", fname, fn.Kind())
	}
	return fn, nil
}
