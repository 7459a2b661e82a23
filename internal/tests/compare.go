package tests

import (
	"fmt"
	"math"

	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Compare reports whether actual is equivalent to expected. Two successes match
// when their values are equal under cfg; two failures match when they belong to
// the same failure class. A success never matches a failure.
func Compare(expected, actual Outcome, cfg ComparisonConfig) (bool, string) {
	if expected.Status != actual.Status {
		return false, fmt.Sprintf("expected %s, got %s", expected, actual)
	}
	switch expected.Status {
	case StatusSuccess:
		return CompareValues(expected.Value, actual.Value, cfg)
	case StatusException:
		if cfg.MatchExceptionClass && expected.Class != actual.Class {
			return false, fmt.Sprintf("expected %s, got %s", expected.Class, actual.Class)
		}
	}
	return true, ""
}

// CompareValues compares two values structurally, applying the float tolerance
// of cfg at every float leaf.
func CompareValues(expected, actual value.Value, cfg ComparisonConfig) (bool, string) {
	return compareValues(expected, actual, cfg, "")
}

func compareValues(expected, actual value.Value, cfg ComparisonConfig, path string) (bool, string) {
	if expected.Kind() != actual.Kind() {
		return false, fmt.Sprintf("%s: expected %s %s, got %s %s", pathStr(path), expected.Kind(), expected, actual.Kind(), actual)
	}

	switch expected.Kind() {
	case value.KindFloat:
		return compareFloats(expected.AsFloat(), actual.AsFloat(), cfg, path)
	case value.KindList, value.KindTuple:
		return compareSeqs(expected, actual, cfg, path)
	case value.KindSet:
		return compareSets(expected, actual, cfg, path)
	case value.KindDict:
		return compareDicts(expected, actual, cfg, path)
	}
	if value.Equal(expected, actual) {
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %s, got %s", pathStr(path), expected, actual)
}

func compareFloats(expected, actual float64, cfg ComparisonConfig, path string) (bool, string) {
	if math.IsNaN(expected) || math.IsNaN(actual) {
		if math.IsNaN(expected) && math.IsNaN(actual) {
			if cfg.NaNEqualsNaN {
				return true, ""
			}
			return false, fmt.Sprintf("%s: nan != nan (set nan_equals_nan to allow)", pathStr(path))
		}
		return false, fmt.Sprintf("%s: expected %s, got %s", pathStr(path), value.FormatFloat(expected), value.FormatFloat(actual))
	}
	if expected == actual {
		return true, ""
	}
	if math.IsInf(expected, 0) || math.IsInf(actual, 0) {
		return false, fmt.Sprintf("%s: expected %s, got %s", pathStr(path), value.FormatFloat(expected), value.FormatFloat(actual))
	}

	var withinTolerance bool
	switch cfg.ToleranceMode {
	case ToleranceModeAbsolute:
		withinTolerance = math.Abs(expected-actual) <= cfg.FloatTolerance
	case ToleranceModeULP:
		withinTolerance = ULPDiff(expected, actual) <= int64(cfg.FloatTolerance)
	default:
		withinTolerance = isWithinRelativeTolerance(expected, actual, cfg.FloatTolerance)
	}

	if withinTolerance {
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %s, got %s (tolerance: %v %s)", pathStr(path),
		value.FormatFloat(expected), value.FormatFloat(actual), cfg.FloatTolerance, cfg.ToleranceMode)
}

func compareSeqs(expected, actual value.Value, cfg ComparisonConfig, path string) (bool, string) {
	if expected.Len() != actual.Len() {
		return false, fmt.Sprintf("%s: expected %d elements, got %d", pathStr(path), expected.Len(), actual.Len())
	}
	for i := 0; i < expected.Len(); i++ {
		indexPath := fmt.Sprintf("%s[%d]", path, i)
		if ok, diff := compareValues(expected.Elem(i), actual.Elem(i), cfg, indexPath); !ok {
			return false, diff
		}
	}
	return true, ""
}

// compareSets matches every expected element against a distinct actual element.
// Elements are tried in canonical order, so with zero tolerance this is plain
// set equality.
func compareSets(expected, actual value.Value, cfg ComparisonConfig, path string) (bool, string) {
	if expected.Len() != actual.Len() {
		return false, fmt.Sprintf("%s: expected %d elements, got %d", pathStr(path), expected.Len(), actual.Len())
	}
	matched := make([]bool, actual.Len())
	for i := 0; i < expected.Len(); i++ {
		exp := expected.Elem(i)
		found := false
		for j := 0; j < actual.Len(); j++ {
			if matched[j] {
				continue
			}
			if ok, _ := compareValues(exp, actual.Elem(j), cfg, ""); ok {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Sprintf("%s: no matching element found for %s", pathStr(path), exp)
		}
	}
	return true, ""
}

func compareDicts(expected, actual value.Value, cfg ComparisonConfig, path string) (bool, string) {
	for _, p := range expected.Pairs() {
		if _, ok := actual.Lookup(p.Key); !ok {
			return false, fmt.Sprintf("%s: missing key %s", pathStr(path), p.Key)
		}
	}
	for _, p := range actual.Pairs() {
		if _, ok := expected.Lookup(p.Key); !ok {
			return false, fmt.Sprintf("%s: unexpected key %s", pathStr(path), p.Key)
		}
	}
	for _, p := range expected.Pairs() {
		act, _ := actual.Lookup(p.Key)
		keyPath := fmt.Sprintf("%s[%s]", path, p.Key)
		if ok, diff := compareValues(p.Val, act, cfg, keyPath); !ok {
			return false, diff
		}
	}
	return true, ""
}

// isWithinRelativeTolerance checks if actual is within relative tolerance of expected.
// For expected == 0, uses absolute comparison to avoid division by zero.
func isWithinRelativeTolerance(expected, actual, tolerance float64) bool {
	if expected == 0 {
		return math.Abs(actual) <= tolerance
	}
	return math.Abs((expected-actual)/expected) <= tolerance
}

// ULPDiff returns the number of representable float64 values between a and b.
// Negative floats are mapped onto a monotonic integer line so that the distance
// across zero is well defined.
func ULPDiff(a, b float64) int64 {
	ai := int64(math.Float64bits(a))
	bi := int64(math.Float64bits(b))
	if ai < 0 {
		ai = math.MinInt64 - ai
	}
	if bi < 0 {
		bi = math.MinInt64 - bi
	}
	diff := ai - bi
	if diff < 0 {
		return -diff
	}
	return diff
}

// pathStr formats a path for error messages.
// Returns "root" for empty path to indicate the top-level value.
func pathStr(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
