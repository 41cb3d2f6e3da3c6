package logging

import (
	"log/slog"
	"strings"
)

// Writer is an io.Writer that forwards output of external tools
// (consul-template, doctl) to slog, one record per line.
type Writer struct {
	logger *slog.Logger
	tool   string
}

// NewWriter constructs a Writer bound to the provided logger and tool name.
func NewWriter(logger *slog.Logger, tool string) *Writer {
	return &Writer{logger: logger, tool: tool}
}

// Write logs the given bytes at info level, skipping empty lines.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger != nil {
		for _, line := range strings.Split(string(p), "\n") {
			line = strings.TrimRight(line, "\r")
			if line != "" {
				w.logger.Info("tool output", "tool", w.tool, "line", line)
			}
		}
	}
	return len(p), nil
}
