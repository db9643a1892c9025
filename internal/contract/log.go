package contract

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// NewLogger returns the structured diagnostic logger used across the client.
// It writes to stderr and only shows debug lines when verbose is set.
func NewLogger(verbose bool) *charmlog.Logger {
	return newLoggerTo(os.Stderr, verbose)
}

// NewDiscardLogger returns a logger that drops everything. Handy in tests.
func NewDiscardLogger() *charmlog.Logger {
	return newLoggerTo(io.Discard, false)
}

func newLoggerTo(w io.Writer, verbose bool) *charmlog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: verbose,
		Level:           level,
		Prefix:          "contacts",
	})
}
