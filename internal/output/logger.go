package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger provides colored console output for pipeline progress
type Logger struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

// NewLogger creates a logger writing to stdout/stderr
func NewLogger() *Logger {
	return &Logger{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// NewLoggerTo creates a logger with explicit writers
func NewLoggerTo(out, errOut io.Writer) *Logger {
	return &Logger{
		out:    out,
		errOut: errOut,
	}
}

// SetNoColor disables colored output globally
func (l *Logger) SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// SetVerbose enables debug output
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Writer returns the standard output writer
func (l *Logger) Writer() io.Writer {
	return l.out
}

// Info prints an informational message
func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Step prints a stage banner
func (l *Logger) Step(format string, args ...any) {
	fmt.Fprintln(l.out, "---")
	color.New(color.Bold).Fprintf(l.out, format+"\n", args...)
}

// Warn prints a warning to stderr
func (l *Logger) Warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.errOut, "Warning: "+format+"\n", args...)
}

// Error prints an error to stderr
func (l *Logger) Error(format string, args ...any) {
	color.New(color.FgRed).Fprintf(l.errOut, "Error: "+format+"\n", args...)
}

// Success prints a success message
func (l *Logger) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(l.out, "✓ "+format+"\n", args...)
}

// Debug prints only when verbose is enabled
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}

	color.New(color.FgHiBlack).Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard)
}
