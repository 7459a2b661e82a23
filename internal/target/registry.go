package target

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
)

// Options configures how implementations are opened.
type Options struct {
	FuncName string // Function under test
	Python   string // Python interpreter; empty means DefaultPython
}

// Open creates a target for a single implementation file, chosen by extension.
func Open(path string, opts Options) (Target, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("implementation", path)
		}
		return nil, errors.Wrap(err, "cannot access implementation")
	}
	if info.IsDir() {
		return nil, errors.Configf("implementation %s is a directory", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return NewPython(path, opts.FuncName, opts.Python), nil
	case ".go":
		return NewGo(path, opts.FuncName), nil
	}
	return nil, errors.Configf("implementation %s: unsupported file type (want .py or .go)", path)
}

// Registry manages a collection of targets.
type Registry struct {
	targets map[string]Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Discover creates a registry from every implementation file in dir. Files whose
// names start with "." or "_", Go test files and unsupported extensions are
// skipped. Paths listed in exclude (typically the reference) are skipped too.
func Discover(dir string, opts Options, exclude ...string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("candidates directory", dir)
		}
		return nil, errors.Wrap(err, "cannot read candidates directory")
	}

	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	r := NewRegistry()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isCandidateFile(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			continue
		}
		t, err := Open(path, opts)
		if err != nil {
			return nil, err
		}
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func isCandidateFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	if strings.HasSuffix(name, "_test.go") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".py", ".go":
		return true
	}
	return false
}

// Add registers t. Names must be unique.
func (r *Registry) Add(t Target) error {
	if _, ok := r.targets[t.Name()]; ok {
		return errors.Configf("duplicate implementation name %q", t.Name())
	}
	r.targets[t.Name()] = t
	return nil
}

// Get retrieves a target by name.
func (r *Registry) Get(name string) (Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// All returns all targets sorted by name.
func (r *Registry) All() []Target {
	targets := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Name() < targets[j].Name()
	})
	return targets
}

// ByType returns targets of a specific type sorted by name.
func (r *Registry) ByType(targetType TargetType) []Target {
	var targets []Target
	for _, t := range r.All() {
		if t.Type() == targetType {
			targets = append(targets, t)
		}
	}
	return targets
}

// Names returns all target names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	return len(r.targets)
}

// Preflight runs the preflight check of every target in name order and returns
// the first failure.
func (r *Registry) Preflight(ctx context.Context) error {
	for _, t := range r.All() {
		if err := Preflight(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
