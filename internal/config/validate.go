package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// Function names must be valid identifiers in every supported implementation language.
var funcNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MaxWorkers is the largest accepted worker count.
const MaxWorkers = 256

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a document for errors that the grammar parser does not cover
// and returns warnings for non-fatal issues. Defaults must already be applied.
func Validate(doc *Document) (warnings []string, err error) {
	if !funcNamePattern.MatchString(doc.FuncName) {
		return nil, &ValidationError{
			Field:   "fname",
			Message: fmt.Sprintf("%q is not a valid function name", doc.FuncName),
		}
	}

	if err := validateArity(doc); err != nil {
		return nil, err
	}

	if doc.NumRandom < 0 {
		return nil, &ValidationError{Field: "num random", Message: "must be non-negative"}
	}
	if doc.Workers < 0 || doc.Workers > MaxWorkers {
		return nil, &ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("must be between 0 and %d", MaxWorkers),
		}
	}
	if _, err := parseTimeout(doc.Timeout); err != nil {
		return nil, err
	}
	if err := validateComparison(doc.Comparison); err != nil {
		return nil, err
	}

	if doc.Seed != nil && doc.NumRandom == 0 {
		warnings = append(warnings, `"seed" has no effect when "num random" is 0`)
	}
	if doc.MaxExhaustive != nil && *doc.MaxExhaustive == 0 {
		warnings = append(warnings, `"max exhaustive" is 0; the exhaustive base set is unbounded`)
	}
	return warnings, nil
}

func validateArity(doc *Document) error {
	n := len(doc.Types)
	if len(doc.ExhaustiveDomain) != n {
		return &ValidationError{
			Field:   "exhaustive domain",
			Message: fmt.Sprintf("has %d entries, want %d (one per type)", len(doc.ExhaustiveDomain), n),
		}
	}
	if len(doc.RandomDomain) != n {
		return &ValidationError{
			Field:   "random domain",
			Message: fmt.Sprintf("has %d entries, want %d (one per type)", len(doc.RandomDomain), n),
		}
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", s)}
	}
	if d <= 0 {
		return 0, &ValidationError{Field: "timeout", Message: "must be positive"}
	}
	return d, nil
}

func validateComparison(c *ComparisonDocument) error {
	if c == nil {
		return nil
	}
	if c.FloatTolerance < 0 {
		return &ValidationError{Field: "comparison.float_tolerance", Message: "must be non-negative"}
	}
	switch tests.ToleranceMode(c.ToleranceMode) {
	case tests.ToleranceModeRelative, tests.ToleranceModeAbsolute, tests.ToleranceModeULP:
	default:
		return &ValidationError{
			Field:   "comparison.tolerance_mode",
			Message: `must be "relative", "absolute" or "ulp"`,
		}
	}
	return nil
}
