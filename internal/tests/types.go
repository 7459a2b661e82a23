// Package tests provides test cases, execution outcomes, outcome comparison and the
// kill record produced by differential execution.
package tests

import (
	"fmt"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// TestCase is one concrete input tuple, one Value per function parameter.
//
// Expected is attached once by the differential tester after the reference has
// run; it is nil until then. Identity is by the input tuple only.
type TestCase struct {
	Inputs   []value.Value
	Expected *Outcome
}

// NewTestCase creates a test case for the given input tuple.
func NewTestCase(inputs ...value.Value) *TestCase {
	return &TestCase{Inputs: inputs}
}

// Key identifies the input tuple: two test cases share a key iff their inputs are equal.
func (tc *TestCase) Key() string {
	return value.TupleKey(tc.Inputs)
}

// Call renders the test case as a call expression, e.g. "add(1, 2)".
func (tc *TestCase) Call(fname string) string {
	return fname + "(" + value.CallArgs(tc.Inputs) + ")"
}

func (tc *TestCase) String() string {
	return "(" + value.CallArgs(tc.Inputs) + ")"
}

// Status classifies how an invocation ended.
type Status int

const (
	StatusSuccess Status = iota
	StatusException
	StatusTimeout
	StatusCrash
)

var statusNames = [...]string{
	StatusSuccess:   "ok",
	StatusException: "exception",
	StatusTimeout:   "timeout",
	StatusCrash:     "crash",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus resolves a status name as produced by Status.String.
func ParseStatus(name string) (Status, bool) {
	for s, n := range statusNames {
		if n == name {
			return Status(s), true
		}
	}
	return 0, false
}

// Outcome is the observed result of invoking an implementation on one test case.
// Failures are outcomes, not errors.
type Outcome struct {
	Status   Status
	Value    value.Value   // result when Status is StatusSuccess
	Class    string        // exception class name when Status is StatusException
	Message  string        // exception message or crash diagnostics
	Duration time.Duration // wall time of the invocation
}

// Success returns a successful outcome carrying v.
func Success(v value.Value) Outcome {
	return Outcome{Status: StatusSuccess, Value: v}
}

// Exception returns an outcome for an implementation that raised (or panicked).
func Exception(class, message string) Outcome {
	return Outcome{Status: StatusException, Class: class, Message: message}
}

// Timeout returns an outcome for an invocation that exceeded its deadline.
func Timeout() Outcome {
	return Outcome{Status: StatusTimeout}
}

// Crash returns an outcome for an invocation that terminated abnormally without
// reporting a result.
func Crash(message string) Outcome {
	return Outcome{Status: StatusCrash, Message: message}
}

// OK reports whether the invocation returned normally.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusSuccess:
		return o.Value.String()
	case StatusException:
		if o.Message == "" {
			return "raises " + o.Class
		}
		return fmt.Sprintf("raises %s: %s", o.Class, o.Message)
	case StatusTimeout:
		return "timeout"
	default:
		if o.Message == "" {
			return "crash"
		}
		return "crash: " + o.Message
	}
}

// ToleranceMode represents how float comparison tolerance is applied.
type ToleranceMode string

const (
	// ToleranceModeRelative uses relative tolerance (fraction of the expected value).
	ToleranceModeRelative ToleranceMode = "relative"
	// ToleranceModeAbsolute uses absolute tolerance.
	ToleranceModeAbsolute ToleranceMode = "absolute"
	// ToleranceModeULP uses ULP (Units in Last Place) tolerance.
	ToleranceModeULP ToleranceMode = "ulp"
)

// ComparisonConfig configures how outcomes are compared.
type ComparisonConfig struct {
	FloatTolerance      float64       `json:"float_tolerance" yaml:"float_tolerance"`
	ToleranceMode       ToleranceMode `json:"tolerance_mode" yaml:"tolerance_mode"`
	NaNEqualsNaN        bool          `json:"nan_equals_nan" yaml:"nan_equals_nan"`
	MatchExceptionClass bool          `json:"match_exception_class" yaml:"match_exception_class"`
}

// DefaultComparisonConfig returns the default comparison settings: floats must be
// identical, NaN equals NaN, and two exceptions only match when their classes do.
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		FloatTolerance:      0,
		ToleranceMode:       ToleranceModeRelative,
		NaNEqualsNaN:        true,
		MatchExceptionClass: true,
	}
}
