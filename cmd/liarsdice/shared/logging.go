package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger at the named level
func SetupLogger(level string) *log.Logger {
	return newLogger(os.Stderr, level)
}

// SetupFileLogger configures a logger writing to the given writer. The TUI
// owns the terminal, so interactive commands log to a file instead.
func SetupFileLogger(w io.Writer, level string) *log.Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
	})

	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	return logger
}
