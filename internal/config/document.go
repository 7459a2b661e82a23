// Package config loads diffgen configuration documents and parses their type and
// domain expressions into generator trees.
package config

import (
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/node"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// Document is the configuration document as written on disk. Keys with spaces
// follow the established document format.
type Document struct {
	Schema           string              `json:"$schema,omitempty"`
	FuncName         string              `json:"fname"`
	Types            []string            `json:"types"`
	ExhaustiveDomain []string            `json:"exhaustive domain"`
	RandomDomain     []string            `json:"random domain"`
	NumRandom        int                 `json:"num random"`
	Seed             *uint64             `json:"seed,omitempty"`
	Timeout          string              `json:"timeout,omitempty"`
	Workers          int                 `json:"workers,omitempty"`
	MaxExhaustive    *uint64             `json:"max exhaustive,omitempty"`
	Comparison       *ComparisonDocument `json:"comparison,omitempty"`
}

// ComparisonDocument holds the optional output comparison settings.
type ComparisonDocument struct {
	FloatTolerance      float64 `json:"float_tolerance,omitempty"`
	ToleranceMode       string  `json:"tolerance_mode,omitempty"`
	NaNEqualsNaN        *bool   `json:"nan_equals_nan,omitempty"`
	MatchExceptionClass *bool   `json:"match_exception_class,omitempty"`
}

// ParsedSpec is what generation needs: the function name, one generator tree per
// parameter with both domains attached, and the number of random draws.
type ParsedSpec struct {
	FuncName  string
	Params    []node.Node
	NumRandom int
}

// Config is a fully parsed configuration.
type Config struct {
	ParsedSpec

	// Seed drives random draws; HasSeed is false when the document left it unset.
	Seed    uint64
	HasSeed bool

	Timeout       time.Duration
	Workers       int    // 0 selects the runner default
	MaxExhaustive uint64 // 0 disables the limit
	Comparison    tests.ComparisonConfig
}
