package internal

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var verboseEnabled atomic.Bool

// SetVerbose toggles verbose diagnostics for the current invocation.
func SetVerbose(on bool) {
	verboseEnabled.Store(on)
}

// IsVerbose reports whether verbose diagnostics are enabled.
func IsVerbose() bool {
	return verboseEnabled.Load()
}

// SetupLogging replaces the default slog handler according to the configured
// level and format, and returns a cleanup function restoring the original
// handler.
//
// Parameters:
//   - w: destination for log output (normally stderr)
//   - level: "debug", "info", "warn" or "error"
//   - format: "text" or "json"
//   - verbose: forces level down to debug and enables verbose diagnostics
//
// Usage:
//
//	cleanup := SetupLogging(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, verboseFlag)
//	defer cleanup()
func SetupLogging(w io.Writer, level, format string, verbose bool) func() {
	SetVerbose(verbose)

	slogLevel := parseLevel(level)
	if verbose {
		slogLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	original := slog.Default()
	slog.SetDefault(slog.New(handler))

	return func() {
		slog.SetDefault(original)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
