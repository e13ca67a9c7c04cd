// Package cli implements the sekernel command-line interface.
//
// The commands build (or load) the kernel lookup table, evaluate single kernel
// values, enhance orientation fields, render table slices, serve kernel queries
// over HTTP and manage the table cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Compute or load the lookup table, optionally exporting it as .npy
//   - evaluate: Print K2 for one pair of positions and orientations
//   - enhance: Convolve an orientation field with the table
//   - plot: Render a heat map of one table slice
//   - serve: Answer kernel queries over HTTP
//   - cache: Manage the table cache
//
// # Configuration
//
// Defaults come from ~/.config/sekernel/config.toml when present (see Config);
// flags set on the command line win.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger with "15:04:05.00" timestamps that
// drops messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs how long an operation took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, appended to kv:
//
//	12:01:07.45 INFO Kernel ready cached=false elapsed=1.234s
func (s stopwatch) done(msg string, kv ...any) {
	s.logger.Info(msg, append(kv, "elapsed", time.Since(s.start).Round(time.Millisecond))...)
}
