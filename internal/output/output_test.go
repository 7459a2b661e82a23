package output

import (
	"bytes"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := &Writer{
		out:   stdout,
		err:   stderr,
		color: false, // Disable color for predictable test output
		quiet: false,
	}
	return w, stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil {
		t.Error("out writer is nil")
	}
	if w.err == nil {
		t.Error("err writer is nil")
	}
}

func TestWriter_SetQuiet(t *testing.T) {
	w, _, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.quiet {
		t.Error("SetQuiet(true) did not set quiet")
	}

	w.SetQuiet(false)
	if w.quiet {
		t.Error("SetQuiet(false) did not unset quiet")
	}
}

func TestWriter_Hint(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Hint("raise %q", "max exhaustive")
	if stdout.Len() != 0 {
		t.Errorf("Hint() wrote to stdout: %q", stdout.String())
	}
	if got, want := stderr.String(), "hint: raise \"max exhaustive\"\n"; got != want {
		t.Errorf("Hint() = %q, want %q", got, want)
	}

	stderr.Reset()
	w.SetQuiet(true)
	w.Hint("ignored")
	if stderr.Len() != 0 {
		t.Errorf("Hint() in quiet mode = %q, want nothing", stderr.String())
	}
}

func TestWriter_Println(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Println("hello %s", "world")

	if got := stdout.String(); got != "hello world\n" {
		t.Errorf("Println() = %q, want %q", got, "hello world\n")
	}
}

func TestWriter_Errorln(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.Errorln("error %d", 42)

	if got := stderr.String(); got != "error 42\n" {
		t.Errorf("Errorln() = %q, want %q", got, "error 42\n")
	}
}

func TestWriter_InfoGoesToStderr(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Info("building %d cases", 4)

	if stdout.Len() != 0 {
		t.Errorf("Info() wrote to stdout: %q", stdout.String())
	}
	if got := stderr.String(); got != "building 4 cases\n" {
		t.Errorf("Info() = %q, want %q", got, "building 4 cases\n")
	}
}

func TestWriter_QuietSuppressesProgress(t *testing.T) {
	w, stdout, stderr := newTestWriter()
	w.SetQuiet(true)

	w.Info("info")
	w.Step(1, "step")
	w.StepDetail("detail")
	w.Warning("still shown")

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if got := stderr.String(); got != "warning: still shown\n" {
		t.Errorf("stderr = %q, want only the warning", got)
	}
}

func TestWriter_StepAndDetail(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.Step(2, "Running %s", "candidates")
	w.StepDetail("%d invocations", 12)

	want := "2. Running candidates\n   - 12 invocations\n"
	if got := stderr.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.ErrorPrefix("config file not found: %s", "diffgen.json")

	if got, want := stderr.String(), "diffgen: config file not found: diffgen.json\n"; got != want {
		t.Errorf("ErrorPrefix() = %q, want %q", got, want)
	}
}

func TestWriter_Summary(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Section("Summary")
	w.SummaryItem("Base set", "4")
	w.SummaryPassed("Killed", "2")
	w.SummaryFailed("Survived", "1")

	want := "\n=== Summary ===\n  Base set: 4\n  Killed: 2\n  Survived: 1\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_List(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.List([]string{"a.py", "b.go"})

	if got, want := stdout.String(), "  - a.py\n  - b.go\n"; got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestWriter_Table(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Table([]string{"#", "Type", "Exhaustive"}, [][]string{
		{"0", "int", "2"},
		{"1", "list(str(ab))", "15"},
	})

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table() printed %d lines, want 4:\n%s", len(lines), stdout.String())
	}
	if lines[0] != "#  Type           Exhaustive" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "-  -------------  ----------" {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[3] != "1  list(str(ab))  15" {
		t.Errorf("row = %q", lines[3])
	}
}

func TestWriter_ColorDisabledHasNoEscapes(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Success("done")
	w.ValidationSuccess("valid")
	w.Hint("hint")
	w.Warning("careful")

	if strings.Contains(stdout.String()+stderr.String(), "\x1b[") {
		t.Error("output contains ANSI escapes with color disabled")
	}
}
