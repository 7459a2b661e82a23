package target

import (
	"context"
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

//go:embed driver.py
var driverSource string

// DefaultPython is the interpreter used when none is configured.
const DefaultPython = "python3"

// PythonTarget runs a Python source file in a fresh interpreter per invocation.
type PythonTarget struct {
	name   string
	path   string
	fname  string
	python string
}

// NewPython creates a target for the Python source file at path exposing fname.
// An empty interpreter means DefaultPython.
func NewPython(path, fname, interpreter string) *PythonTarget {
	if interpreter == "" {
		interpreter = DefaultPython
	}
	return &PythonTarget{
		name:   filepath.Base(path),
		path:   path,
		fname:  fname,
		python: interpreter,
	}
}

func (t *PythonTarget) Name() string     { return t.name }
func (t *PythonTarget) Path() string     { return t.path }
func (t *PythonTarget) Type() TargetType { return TypePython }

// Preflight checks that the interpreter exists and that the source defines a
// top-level function named fname.
func (t *PythonTarget) Preflight(ctx context.Context) error {
	if _, err := exec.LookPath(t.python); err != nil {
		return errors.Tooling(t.name, err, "python interpreter not available")
	}
	src, err := os.ReadFile(t.path)
	if err != nil {
		return errors.Tooling(t.name, err, "cannot read source")
	}
	funcs, err := topLevelFunctions(ctx, src)
	if err != nil {
		return errors.Tooling(t.name, err, "cannot parse source")
	}
	for _, f := range funcs {
		if f == t.fname {
			return nil
		}
	}
	return errors.Toolingf(t.name, "function %q not defined at top level", t.fname)
}

// Invoke runs the driver with args on stdin and decodes its report.
func (t *PythonTarget) Invoke(ctx context.Context, args []value.Value) (tests.Outcome, error) {
	cmd := exec.CommandContext(ctx, t.python, "-c", driverSource, t.path, t.fname)
	return runHosted(ctx, t.name, cmd, args)
}

// topLevelFunctions lists the names of functions defined at module level,
// including decorated ones.
func topLevelFunctions(ctx context.Context, src []byte) ([]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var names []string
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "decorated_definition" {
			child = child.ChildByFieldName("definition")
			if child == nil {
				continue
			}
		}
		if child.Type() != "function_definition" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			names = append(names, name.Content(src))
		}
	}
	return names, nil
}
