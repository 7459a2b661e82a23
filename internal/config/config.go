package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/schema"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// Load reads a configuration document and applies defaults. It does not parse
// type or domain expressions.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Configf("failed to read config file: %v", err)
	}

	doc, _, err := LoadWithWarnings(path, data)
	if err != nil {
		return nil, err
	}

	applyDefaults(doc)
	return doc, nil
}

// LoadAndValidate reads a configuration file, applies defaults, validates it,
// and parses every parameter into a generator tree.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFound("config file", path)
		}
		return nil, nil, errors.Configf("failed to read config file: %v", err)
	}

	doc, unknownWarnings, err := LoadWithWarnings(path, data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(doc)

	validationWarnings, err := Validate(doc)

	// Combine warnings from both sources.
	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, errors.Validation(err, "invalid configuration")
	}

	cfg, err := Parse(doc)
	if err != nil {
		return nil, allWarnings, err
	}
	return cfg, allWarnings, nil
}

// LoadWithWarnings decodes document data (JSON, or YAML for .yaml/.yml paths),
// checks it against the embedded schema, and returns unknown field warnings.
func LoadWithWarnings(path string, data []byte) (*Document, []string, error) {
	jsonData, err := toJSON(path, data)
	if err != nil {
		return nil, nil, err
	}

	if err := schema.ValidateConfig(jsonData); err != nil {
		return nil, nil, errors.Configf("%s: %v", filepath.Base(path), err)
	}

	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, nil, errors.Configf("failed to parse config file: %v", err)
	}

	return &doc, detectUnknownFields(jsonData), nil
}

// toJSON normalizes a document to JSON so schema validation and decoding see one format.
func toJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Configf("failed to parse YAML config file: %v", err)
		}
		out, err := json.Marshal(raw)
		if err != nil {
			return nil, errors.Configf("failed to convert YAML config file: %v", err)
		}
		return out, nil
	}
	return data, nil
}

// Parse converts a document into a Config, applying defaults to doc first.
func Parse(doc *Document) (*Config, error) {
	applyDefaults(doc)
	if err := validateArity(doc); err != nil {
		return nil, errors.Validation(err, "invalid configuration")
	}

	cfg := &Config{
		ParsedSpec: ParsedSpec{
			FuncName:  doc.FuncName,
			NumRandom: doc.NumRandom,
		},
		Workers: doc.Workers,
	}

	for i, typ := range doc.Types {
		n, err := parseParameter(i, typ, doc.ExhaustiveDomain[i], doc.RandomDomain[i])
		if err != nil {
			return nil, errors.Validation(err, fmt.Sprintf("parameter %d", i))
		}
		cfg.Params = append(cfg.Params, n)
	}

	if doc.Seed != nil {
		cfg.Seed, cfg.HasSeed = *doc.Seed, true
	}
	d, err := parseTimeout(doc.Timeout)
	if err != nil {
		return nil, errors.Validation(err, "invalid configuration")
	}
	cfg.Timeout = d
	cfg.MaxExhaustive = *doc.MaxExhaustive

	c := doc.Comparison
	cfg.Comparison = tests.ComparisonConfig{
		FloatTolerance:      c.FloatTolerance,
		ToleranceMode:       tests.ToleranceMode(c.ToleranceMode),
		NaNEqualsNaN:        *c.NaNEqualsNaN,
		MatchExceptionClass: *c.MatchExceptionClass,
	}
	return cfg, nil
}
