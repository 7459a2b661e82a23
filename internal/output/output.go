// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Out returns the writer used for standard output.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Styles.
var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Faint(true)
	styleRed     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleGreen   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleYellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleCyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleSection = styleBold.Foreground(lipgloss.Color("6"))
)

// paint renders s with style when color output is enabled.
func (w *Writer) paint(style lipgloss.Style, s string) string {
	if !w.color {
		return s
	}
	return style.Render(s)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message to stderr (skipped in quiet mode). Progress goes
// to stderr so that stdout carries only the report.
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.paint(styleGreen, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(styleYellow, "warning:"), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message with the diffgen prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(styleRed, "diffgen:"), fmt.Sprintf(format, args...))
}

// Step prints a numbered progress step to stderr (skipped in quiet mode).
func (w *Writer) Step(num int, format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln("%s %s", w.paint(styleCyan, fmt.Sprintf("%d.", num)), fmt.Sprintf(format, args...))
}

// StepDetail prints an indented detail line under a step.
func (w *Writer) StepDetail(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln("   %s", w.paint(styleDim, "- "+fmt.Sprintf(format, args...)))
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	w.Println("")
	w.Println("%s", w.paint(styleSection, "=== "+title+" ==="))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.paint(styleDim, label+":"), value)
}

// SummaryPassed prints a summary item whose value is good news.
func (w *Writer) SummaryPassed(label, value string) {
	w.Println("  %s %s", w.paint(styleDim, label+":"), w.paint(styleGreen, value))
}

// SummaryFailed prints a summary item whose value is bad news.
func (w *Writer) SummaryFailed(label, value string) {
	w.Println("  %s %s", w.paint(styleDim, label+":"), w.paint(styleRed, value))
}

// ValidationSuccess prints a validation success message.
func (w *Writer) ValidationSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s %s", styleGreen.Render("✓"), msg)
	} else {
		w.Println("%s", msg)
	}
}

// Hint prints a hint message for the user to stderr (skipped in quiet mode).
func (w *Writer) Hint(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln("%s", w.paint(styleDim, "hint: "+fmt.Sprintf(format, args...)))
}

// Table prints a simple table.
func (w *Writer) Table(headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	w.Println("%s", w.paint(styleBold, strings.TrimRight(strings.Join(headerParts, "  "), " ")))

	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println("%s", strings.Join(sepParts, "  "))

	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println("%s", strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
