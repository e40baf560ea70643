package logger

import (
	"io"
	"os"

	"github.com/fatih/color" // Colored console output for the different log levels
)

// Colorized printing functions for the update run, built on fatih/color.
// Each behaves like fmt.Printf. Info and Debug go to stdout with the rest of
// the program output; Warn and Error go to stderr so they survive redirection.

var (
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgHiMagenta)
	errorColor = color.New(color.FgRed)
	debugColor = color.New(color.FgCyan)
)

// stderr is where Warn and Error write. Tests swap it out with SetErrorOutput.
var stderr io.Writer = os.Stderr

// Info logs progress of the pipeline steps in green.
var Info = infoColor.PrintfFunc()

// Warn logs advisories in bright magenta, e.g. an unsupported platform
// or a sync tool that exited with a non-zero status.
var Warn = func(format string, a ...any) {
	warnColor.Fprintf(stderr, format, a...)
}

// Error logs the failing step in red.
var Error = func(format string, a ...any) {
	errorColor.Fprintf(stderr, format, a...)
}

// Debug logs in cyan when enabled through Init, otherwise it is a no-op.
// It starts out as a no-op so packages can log before the CLI has parsed --debug.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = debugColor.PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// SetErrorOutput redirects Warn and Error output and returns the previous writer.
func SetErrorOutput(w io.Writer) io.Writer {
	prev := stderr
	stderr = w
	return prev
}
