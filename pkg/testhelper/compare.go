package testhelper

import (
	"context"
	"fmt"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// CompareOptions configures how an actual outcome is checked.
type CompareOptions struct {
	// FloatTolerance is the allowed float difference; 0 requires identical floats.
	FloatTolerance float64

	// ToleranceMode is "relative", "absolute" or "ulp".
	ToleranceMode string

	// NaNEqualsNaN treats two NaNs as equal.
	NaNEqualsNaN bool

	// MatchExceptionClass requires the failure class to match. Reports generated
	// from a Python reference carry Python class names, so this is off by default
	// and any returned error or panic satisfies an expected exception.
	MatchExceptionClass bool

	// Timeout bounds one call. Zero means no limit.
	Timeout time.Duration
}

// DefaultOptions returns exact float comparison, NaN equal to NaN, class-blind
// exceptions and a 5s timeout.
func DefaultOptions() CompareOptions {
	def := tests.DefaultComparisonConfig()
	return CompareOptions{
		FloatTolerance: def.FloatTolerance,
		ToleranceMode:  string(def.ToleranceMode),
		NaNEqualsNaN:   def.NaNEqualsNaN,
		Timeout:        5 * time.Second,
	}
}

// ValidateOptions checks that options are valid.
func ValidateOptions(opts CompareOptions) error {
	if opts.FloatTolerance < 0 {
		return fmt.Errorf("FloatTolerance must be non-negative, got %v", opts.FloatTolerance)
	}
	switch tests.ToleranceMode(opts.ToleranceMode) {
	case tests.ToleranceModeRelative, tests.ToleranceModeAbsolute, tests.ToleranceModeULP:
	default:
		return fmt.Errorf("invalid ToleranceMode %q (use relative, absolute or ulp)", opts.ToleranceMode)
	}
	if opts.Timeout < 0 {
		return fmt.Errorf("Timeout must be non-negative, got %v", opts.Timeout)
	}
	return nil
}

func (o CompareOptions) config() tests.ComparisonConfig {
	return tests.ComparisonConfig{
		FloatTolerance:      o.FloatTolerance,
		ToleranceMode:       tests.ToleranceMode(o.ToleranceMode),
		NaNEqualsNaN:        o.NaNEqualsNaN,
		MatchExceptionClass: o.MatchExceptionClass,
	}
}

// MismatchError reports an implementation disagreeing with the expected outcome.
type MismatchError struct {
	Call     string
	Expected string
	Actual   string
	Detail   string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: expected %s, got %s", e.Call, e.Expected, e.Actual)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Check calls fn with the case's arguments and compares the outcome with the
// expected one. fn may have any signature whose parameters accept the
// arguments; a trailing error result reports an exception. A mismatch is
// returned as *MismatchError; other errors mean fn could not be called.
func (c Case) Check(fn any, opts CompareOptions) error {
	if err := ValidateOptions(opts); err != nil {
		return err
	}
	impl, err := target.NewNative(c.Call, fn)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	actual, err := impl.Invoke(ctx, c.inputs)
	if err != nil {
		return err
	}

	if ok, detail := tests.Compare(c.expected, actual, opts.config()); !ok {
		if actual.Status != c.expected.Status {
			detail = ""
		}
		return &MismatchError{Call: c.Call, Expected: c.Expected, Actual: actual.String(), Detail: detail}
	}
	return nil
}

// CheckAll runs Check for every case and returns the mismatches, in case order.
// It stops at the first error that is not a mismatch.
func (r *Report) CheckAll(fn any, opts CompareOptions) ([]*MismatchError, error) {
	var out []*MismatchError
	for _, c := range r.Cases {
		err := c.Check(fn, opts)
		if err == nil {
			continue
		}
		m, ok := err.(*MismatchError)
		if !ok {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}
