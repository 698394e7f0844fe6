// Package logging holds the harness's diagnostic logger. Diagnostics are
// kept apart from test reporting: the console report always prints, while
// this logger stays silent unless TESTKIT_DEBUG is set. It writes to stderr,
// so in a harness-spawned child the records land in that child's captured
// output and show up in verbose failure dumps.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Environment variables the logger reads. EnvRunID is set by the harness in
// its child processes so parent and child records carry the same run ID.
const (
	EnvDebug = "TESTKIT_DEBUG"
	EnvRunID = "TESTKIT_RUN_ID"
)

// Logger is the package-wide diagnostic logger. It discards everything until
// Initialize enables it.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize configures Logger from the environment. Calling it again just
// rebuilds the same configuration.
func Initialize() {
	if os.Getenv(EnvDebug) == "" {
		return
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	if id := os.Getenv(EnvRunID); id != "" {
		logger = logger.With("run_id", id)
	}
	Logger = logger
}
