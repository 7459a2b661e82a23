package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/node"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const addConfig = `{
	"fname": "add",
	"types": ["int", "int"],
	"exhaustive domain": ["0~1", "0~1"],
	"random domain": ["0~9", "[10, 20]"],
	"num random": 5
}`

func TestLoadAndValidate_JSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", addConfig)

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if cfg.FuncName != "add" {
		t.Errorf("FuncName = %q, want %q", cfg.FuncName, "add")
	}
	if cfg.NumRandom != 5 {
		t.Errorf("NumRandom = %d, want 5", cfg.NumRandom)
	}
	want := []node.Node{
		&node.IntNode{Exhaustive: []int64{0, 1}, Random: []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		&node.IntNode{Exhaustive: []int64{0, 1}, Random: []int64{10, 20}},
	}
	if diff := cmp.Diff(want, cfg.Params); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", addConfig)

	cfg, _, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxExhaustive != DefaultMaxExhaustive {
		t.Errorf("MaxExhaustive = %d, want %d", cfg.MaxExhaustive, DefaultMaxExhaustive)
	}
	if cfg.HasSeed {
		t.Error("HasSeed = true, want false")
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if diff := cmp.Diff(tests.DefaultComparisonConfig(), cfg.Comparison); diff != "" {
		t.Errorf("Comparison mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAndValidate_Options(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"fname": "mean",
		"types": ["list(float)"],
		"exhaustive domain": ["1~2([0.5, 1.5])"],
		"random domain": ["0~5(0~100)"],
		"num random": 10,
		"seed": 7,
		"timeout": "250ms",
		"workers": 3,
		"max exhaustive": 0,
		"comparison": {
			"float_tolerance": 0.001,
			"tolerance_mode": "absolute",
			"nan_equals_nan": false,
			"match_exception_class": false
		}
	}`)

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if !cfg.HasSeed || cfg.Seed != 7 {
		t.Errorf("Seed = %d (set %v), want 7", cfg.Seed, cfg.HasSeed)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %v, want 250ms", cfg.Timeout)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.MaxExhaustive != 0 {
		t.Errorf("MaxExhaustive = %d, want 0", cfg.MaxExhaustive)
	}
	want := tests.ComparisonConfig{
		FloatTolerance: 0.001,
		ToleranceMode:  tests.ToleranceModeAbsolute,
	}
	if diff := cmp.Diff(want, cfg.Comparison); diff != "" {
		t.Errorf("Comparison mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "max exhaustive") {
		t.Errorf("warnings = %v, want one about max exhaustive", warnings)
	}
}

func TestLoadAndValidate_YAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
fname: count_chars
types:
  - str(ab)
  - dict(int:bool
exhaustive domain:
  - 0~2
  - 0~1(0~1:0~1
random domain:
  - 0~5
  - 1~3(0~9:1
num random: 2
seed: 3
`)

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if cfg.FuncName != "count_chars" {
		t.Errorf("FuncName = %q, want %q", cfg.FuncName, "count_chars")
	}
	if len(cfg.Params) != 2 {
		t.Fatalf("len(Params) = %d, want 2", len(cfg.Params))
	}
	if got := cfg.Params[1].String(); got != "dict(int:bool)" {
		t.Errorf("Params[1] = %s, want dict(int:bool)", got)
	}
	if !cfg.HasSeed || cfg.Seed != 3 {
		t.Errorf("Seed = %d (set %v), want 3", cfg.Seed, cfg.HasSeed)
	}
}

func TestLoadAndValidate_UnknownFieldWarnings(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"fname": "f",
		"types": ["int"],
		"exhaustive domain": ["0"],
		"random domain": ["0"],
		"colour": "blue",
		"comparison": {"epsilon": 1}
	}`)

	_, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	want := []string{
		`unknown field "colour" at root level (ignored)`,
		`unknown field "epsilon" in comparison (ignored)`,
	}
	if diff := cmp.Diff(want, warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAndValidate_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		file    string
		content string
		kind    errors.ErrorKind
	}{
		{"malformed json", "config.json", `{"fname": `, errors.KindConfig},
		{"malformed yaml", "config.yml", "fname: [unclosed", errors.KindConfig},
		{"schema violation", "config.json", `{"fname": "f"}`, errors.KindConfig},
		{
			"arity mismatch", "config.json",
			`{"fname": "f", "types": ["int", "int"], "exhaustive domain": ["0"], "random domain": ["0", "0"]}`,
			errors.KindValidation,
		},
		{
			"bad timeout", "config.json",
			`{"fname": "f", "types": [], "exhaustive domain": [], "random domain": [], "timeout": "soon"}`,
			errors.KindValidation,
		},
		{
			"grammar error", "config.json",
			`{"fname": "f", "types": ["list(int)"], "exhaustive domain": ["0~2"], "random domain": ["0(0)"]}`,
			errors.KindValidation,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.file, tt.content)
			_, _, err := LoadAndValidate(path)
			if err == nil {
				t.Fatal("LoadAndValidate() error = nil, want error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("LoadAndValidate() error = %v, want kind %v", err, tt.kind)
			}
			if errors.GetExitCode(err) != errors.ExitConfigError {
				t.Errorf("GetExitCode() = %d, want %d", errors.GetExitCode(err), errors.ExitConfigError)
			}
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	t.Parallel()
	_, _, err := LoadAndValidate(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("LoadAndValidate() error = %v, want not found", err)
	}
}

func TestLoad_AppliesDefaultsWithoutParsing(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"fname": "f",
		"types": ["nonsense"],
		"exhaustive domain": ["0"],
		"random domain": ["0"]
	}`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %q, want %q", doc.Timeout, DefaultTimeout)
	}
	if doc.Comparison == nil || doc.Comparison.ToleranceMode != "relative" {
		t.Errorf("Comparison = %+v, want relative tolerance mode", doc.Comparison)
	}
}

func TestParse_Document(t *testing.T) {
	t.Parallel()
	doc := &Document{
		FuncName:         "f",
		Types:            []string{"bool"},
		ExhaustiveDomain: []string{"[0, 1]"},
		RandomDomain:     []string{"1"},
	}

	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	want := []node.Node{&node.BoolNode{Exhaustive: []bool{false, true}, Random: []bool{true}}}
	if diff := cmp.Diff(want, cfg.Params); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
}
