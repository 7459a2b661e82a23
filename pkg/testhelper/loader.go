// Package testhelper checks Go implementations against a concise test set
// produced by "diffgen generate --format json".
//
// Example usage in a Go test:
//
//	func TestFib(t *testing.T) {
//	    r, err := testhelper.LoadReport("testdata/fib.json")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    for _, c := range r.Cases {
//	        t.Run(c.Call, func(t *testing.T) {
//	            if err := c.Check(fib, testhelper.DefaultOptions()); err != nil {
//	                t.Error(err)
//	            }
//	        })
//	    }
//	}
package testhelper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/diffgen/internal/report"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Report is a loaded concise test set.
type Report struct {
	// Function is the name of the function under test.
	Function string

	// Seed is the seed the report was generated with.
	Seed uint64

	// Cases are the concise test cases in selection order.
	Cases []Case
}

// Case is one test case of a report.
type Case struct {
	// Call is the rendered call, e.g. "fib(10)". It makes a good subtest name.
	Call string

	// Args are the rendered arguments.
	Args []string

	// Status is the expected outcome kind: success, exception, timeout or crash.
	Status string

	// Expected is the rendered expected outcome.
	Expected string

	// Kills lists the candidate implementations this case told apart from the
	// reference.
	Kills []string

	inputs   []value.Value
	expected tests.Outcome
}

// LoadReport loads a JSON report from a file.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := ParseReport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseReport decodes a JSON report.
func ParseReport(data []byte) (*Report, error) {
	var doc report.Report
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	r := &Report{Function: doc.Function, Seed: doc.Seed, Cases: make([]Case, len(doc.Tests))}
	for i, e := range doc.Tests {
		status, ok := tests.ParseStatus(e.Status)
		if !ok {
			return nil, fmt.Errorf("test %d (%s): unknown status %q", i, e.Call, e.Status)
		}
		if len(e.Inputs) != len(e.Args) {
			return nil, fmt.Errorf("test %d (%s): %d inputs for %d arguments", i, e.Call, len(e.Inputs), len(e.Args))
		}
		expected := tests.Outcome{Status: status, Class: e.Class}
		if status == tests.StatusSuccess {
			if e.Value == nil {
				return nil, fmt.Errorf("test %d (%s): successful outcome without a value", i, e.Call)
			}
			expected.Value = *e.Value
		}
		r.Cases[i] = Case{
			Call:     e.Call,
			Args:     e.Args,
			Status:   e.Status,
			Expected: e.Expected,
			Kills:    e.Kills,
			inputs:   e.Inputs,
			expected: expected,
		}
	}
	return r, nil
}

// FindReport looks for a file named name in startDir and its parents and
// returns the first path found.
func FindReport(startDir, name string) (string, error) {
	dir := startDir
	for {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &ReportNotFoundError{Name: name, StartDir: startDir}
}

// ReportNotFoundError indicates FindReport reached the filesystem root.
type ReportNotFoundError struct {
	Name     string
	StartDir string
}

func (e *ReportNotFoundError) Error() string {
	return e.Name + " not found (searched from " + e.StartDir + ")"
}
