package config

import "github.com/AndreyAkinshin/diffgen/internal/tests"

// Default configuration values.
const (
	DefaultTimeout              = "5s"
	DefaultMaxExhaustive uint64 = 100000
)

// applyDefaults fills in default values for unset document fields.
func applyDefaults(doc *Document) {
	if doc.Timeout == "" {
		doc.Timeout = DefaultTimeout
	}
	if doc.MaxExhaustive == nil {
		limit := DefaultMaxExhaustive
		doc.MaxExhaustive = &limit
	}
	applyComparisonDefaults(doc)
}

func applyComparisonDefaults(doc *Document) {
	def := tests.DefaultComparisonConfig()
	if doc.Comparison == nil {
		doc.Comparison = &ComparisonDocument{}
	}
	if doc.Comparison.ToleranceMode == "" {
		doc.Comparison.ToleranceMode = string(def.ToleranceMode)
	}
	if doc.Comparison.NaNEqualsNaN == nil {
		v := def.NaNEqualsNaN
		doc.Comparison.NaNEqualsNaN = &v
	}
	if doc.Comparison.MatchExceptionClass == nil {
		v := def.MatchExceptionClass
		doc.Comparison.MatchExceptionClass = &v
	}
}
