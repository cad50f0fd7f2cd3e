// Package ui renders apply reports and progress to the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/okrent/llmapply/internal/executor"
)

// Color definitions for consistent output.
var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	faintColor   = color.New(color.FgWhite, color.Faint)
)

// Writer provides formatted output with consistent prefixes and optional
// colors. In JSON mode the report is emitted as one machine-readable object
// on stdout and everything else goes to stderr.
type Writer struct {
	out      io.Writer
	errOut   io.Writer
	jsonMode bool
	quiet    bool
}

// NewWriter creates a Writer on stdout/stderr.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout, errOut: os.Stderr}
}

// SetJSONMode switches the report rendering to a JSON object.
func (w *Writer) SetJSONMode(on bool) { w.jsonMode = on }

// SetQuiet suppresses informational output.
func (w *Writer) SetQuiet(on bool) { w.quiet = on }

// Info prints an informational line.
func (w *Writer) Info(format string, args ...any) {
	if w.quiet {
		return
	}
	fmt.Fprintf(w.errOut, format+"\n", args...)
}

// Warn prints a warning line.
func (w *Writer) Warn(format string, args ...any) {
	warnColor.Fprintf(w.errOut, "warning: "+format+"\n", args...)
}

// Error prints an error line.
func (w *Writer) Error(format string, args ...any) {
	errorColor.Fprintf(w.errOut, "error: "+format+"\n", args...)
}

// Report renders the per-directive status list.
func (w *Writer) Report(report *executor.Report) {
	if w.jsonMode {
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}

	if len(report.Statuses) == 0 {
		faintColor.Fprintln(w.out, "No file changes found.")
		return
	}

	for _, s := range report.Statuses {
		mark := successColor.Sprint("ok  ")
		if !s.Success {
			mark = errorColor.Sprint("fail")
		}
		line := fmt.Sprintf("%s %-7s %s", mark, s.Kind, s.FilePath)
		if s.FromPath != "" {
			line = fmt.Sprintf("%s %-7s %s -> %s", mark, s.Kind, s.FromPath, s.FilePath)
		}
		fmt.Fprintln(w.out, line)
		if s.Error != "" {
			faintColor.Fprintf(w.out, "     %s\n", s.Error)
		}
		if s.Diff != "" {
			fmt.Fprint(w.out, s.Diff)
		}
	}

	if failed := report.FailedCount(); failed > 0 {
		errorColor.Fprintf(w.out, "%d of %d directives failed\n", failed, len(report.Statuses))
	}
}
