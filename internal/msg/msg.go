// Package msg prints the driver's diagnostics: fatal/error/warning/info
// lines to stderr, colored the way a terminal build tool is expected to,
// plus a small indenting writer used to nest subprocess output.
package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Error prints a fatal-for-the-current-operation diagnostic, prefixed
// "Error:" per the driver's two-tier error/warning convention.
func Error(format string, a ...any) {
	fmt.Fprint(os.Stderr, color.HiRedString("Error"))
	fmt.Fprint(os.Stderr, ": ")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprint(os.Stderr, "\n")
}

// Warn prints a non-fatal diagnostic, prefixed "Warning:".
func Warn(format string, a ...any) {
	fmt.Fprint(os.Stderr, color.YellowString("Warning"))
	fmt.Fprint(os.Stderr, ": ")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprint(os.Stderr, "\n")
}

// Fatal prints an Error diagnostic and terminates the process with a
// non-zero exit code.
func Fatal(format string, a ...any) {
	Error(format, a...)
	os.Exit(1)
}

// Info prints an informational line (verbose-mode tracing), not part of
// the error/warning convention.
func Info(format string, a ...any) {
	fmt.Fprint(os.Stderr, color.HiGreenString("info"))
	fmt.Fprint(os.Stderr, ": ")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprint(os.Stderr, "\n")
}

// IndentWriter wraps an io.Writer, prefixing every line written to it with
// Indent. Used to indent the output of the make subprocess.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if !w.didIndent {
			w.W.Write([]byte(w.Indent))
			w.didIndent = true
		}
		w.W.Write([]byte{c})
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	return len(p), nil
}
