// Package report renders the concise test set of a run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/diffgen/internal/concise"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, json or yaml)", name)
}

// runNamespace scopes run identifiers derived from report content.
var runNamespace = uuid.MustParse("5f0c1d2e-8b7a-4c3d-9e6f-1a2b3c4d5e6f")

// Report is the serializable result of a run. It carries no timings, so two
// runs with the same inputs and seed produce identical reports.
type Report struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	Function   string   `json:"function" yaml:"function"`
	Reference  string   `json:"reference" yaml:"reference"`
	Candidates []string `json:"candidates" yaml:"candidates"`
	Seed       uint64   `json:"seed" yaml:"seed"`
	Exhaustive int      `json:"exhaustive" yaml:"exhaustive"`
	Random     int      `json:"random" yaml:"random"`
	Killed     []string `json:"killed" yaml:"killed"`
	Survivors  []string `json:"survivors" yaml:"survivors"`
	Tests      []Entry  `json:"tests" yaml:"tests"`
}

// Entry is one test case of the concise set.
type Entry struct {
	Call     string        `json:"call" yaml:"call"`
	Args     []string      `json:"args" yaml:"args"`
	Inputs   []value.Value `json:"inputs" yaml:"-"`
	Status   string        `json:"status" yaml:"status"`
	Expected string        `json:"expected" yaml:"expected"`
	Kills    []string      `json:"kills" yaml:"kills"`

	// Value is the expected return value of a successful call; Class is the
	// expected exception class of a failing one.
	Value *value.Value `json:"value,omitempty" yaml:"-"`
	Class string       `json:"class,omitempty" yaml:"class,omitempty"`
}

// Input is what a report is built from.
type Input struct {
	FuncName   string
	Reference  string
	Seed       uint64
	Exhaustive int
	Random     int
	Record     *tests.KillRecord
	Result     *concise.Result
}

// New builds a report. The run ID is a name-based UUID over the report content.
func New(in Input) (*Report, error) {
	r := &Report{
		Function:   in.FuncName,
		Reference:  in.Reference,
		Candidates: nonNil(in.Record.Candidates),
		Seed:       in.Seed,
		Exhaustive: in.Exhaustive,
		Random:     in.Random,
		Killed:     nonNil(in.Record.Names(in.Result.Covered)),
		Survivors:  nonNil(in.Result.Survivors),
		Tests:      make([]Entry, 0, len(in.Result.Indices)),
	}

	for _, i := range in.Result.Indices {
		tc := in.Record.Cases[i]
		args := make([]string, len(tc.Inputs))
		for j, v := range tc.Inputs {
			args[j] = v.String()
		}
		e := Entry{
			Call:   tc.Call(in.FuncName),
			Args:   args,
			Inputs: tc.Inputs,
			Kills:  nonNil(in.Record.Names(in.Record.Kills[i])),
		}
		if exp := tc.Expected; exp != nil {
			e.Status = exp.Status.String()
			e.Expected = exp.String()
			switch exp.Status {
			case tests.StatusSuccess:
				v := exp.Value
				e.Value = &v
			case tests.StatusException:
				e.Class = exp.Class
			}
		}
		r.Tests = append(r.Tests, e)
	}

	body, err := r.canonicalJSON()
	if err != nil {
		return nil, err
	}
	r.RunID = uuid.NewSHA1(runNamespace, body).String()
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatYAML:
		return r.WriteYAML(w)
	default:
		return r.WriteText(w)
	}
}

// WriteJSON writes the report as RFC 8785 canonical JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	body, err := r.canonicalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", body)
	return err
}

func (r *Report) canonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	body, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return body, nil
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// WriteText writes a human-readable report. The first line lists the concise
// set as a tuple of calls.
func (r *Report) WriteText(w io.Writer) error {
	title := cases.Title(language.English)
	var b strings.Builder

	calls := make([]string, len(r.Tests))
	for i, e := range r.Tests {
		calls[i] = e.Call
	}
	fmt.Fprintf(&b, "The concise test set for %s: [%s]\n", r.Function, strings.Join(calls, ", "))

	if len(r.Tests) > 0 {
		fmt.Fprintf(&b, "\n%s\n", title.String("test cases"))
		for _, e := range r.Tests {
			fmt.Fprintf(&b, "  %s\n", e.Call)
			fmt.Fprintf(&b, "    expected: %s\n", e.Expected)
			fmt.Fprintf(&b, "    kills:    %s\n", strings.Join(e.Kills, ", "))
		}
	}

	if len(r.Survivors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", title.String("surviving candidates"))
		for _, s := range r.Survivors {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", title.String("summary"))
	fmt.Fprintf(&b, "  reference:  %s\n", r.Reference)
	fmt.Fprintf(&b, "  candidates: %d (%d killed, %d survived)\n", len(r.Candidates), len(r.Killed), len(r.Survivors))
	fmt.Fprintf(&b, "  base set:   %d (%d exhaustive, %d random)\n", r.Exhaustive+r.Random, r.Exhaustive, r.Random)
	fmt.Fprintf(&b, "  concise:    %d\n", len(r.Tests))
	fmt.Fprintf(&b, "  seed:       %d\n", r.Seed)
	fmt.Fprintf(&b, "  run:        %s\n", r.RunID)

	_, err := io.WriteString(w, b.String())
	return err
}
