// Package cli implements the conceptgraph command-line interface.
//
// # Commands
//
// The main commands are:
//   - path: Print the guided tour order of a graph
//   - tour: Step through a tour interactively and rearrange its outline
//   - outline: Print the outline and apply block moves from the command line
//   - render: Draw the graph and its tour as DOT, SVG, PDF or PNG
//   - serve: Run the HTTP API
//   - store: Manage stored graphs
//   - cache: Manage the path cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Tour and cache
// events are reported through observability hooks at debug level.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Built tour of 42 stops (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
