// Package integration runs diffgen end to end over the fixture implementations.
package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/AndreyAkinshin/diffgen/internal/cli"
	"github.com/AndreyAkinshin/diffgen/internal/config"
	"github.com/AndreyAkinshin/diffgen/internal/pipeline"
	"github.com/AndreyAkinshin/diffgen/internal/target"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the fixture implementations.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "testdata")
	})
	return fixturesDirPath
}

// fixture holds the paths of one fixture directory.
type fixture struct {
	config     string
	candidates string
	reference  string
}

func loadFixture(name, configFile, referenceFile string) fixture {
	dir := filepath.Join(fixturesDir(), name)
	return fixture{
		config:     filepath.Join(dir, configFile),
		candidates: filepath.Join(dir, "candidates"),
		reference:  filepath.Join(dir, referenceFile),
	}
}

// runPipeline loads the fixture the way the generate command does and runs it.
func runPipeline(t *testing.T, f fixture) *pipeline.Result {
	t.Helper()
	cfg, _, err := config.LoadAndValidate(f.config)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	opts := target.Options{FuncName: cfg.FuncName}
	ref, err := target.Open(f.reference, opts)
	if err != nil {
		t.Fatalf("Open(reference) error = %v", err)
	}
	reg, err := target.Discover(f.candidates, opts, f.reference)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	res, err := pipeline.Run(context.Background(), cfg, ref, reg.All(), pipeline.Options{})
	if err != nil {
		t.Fatalf("pipeline.Run() error = %v", err)
	}
	return res
}

func conciseCalls(res *pipeline.Result) []string {
	out := make([]string, len(res.Report.Tests))
	for i, e := range res.Report.Tests {
		out[i] = e.Call
	}
	return out
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli.RunWithWriters(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}
