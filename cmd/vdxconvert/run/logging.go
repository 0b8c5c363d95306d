package run

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

const logFileName = "vdxconvert.log"

// newLogger builds the run logger. Log lines always go to the log file in
// the logs directory; with verbose they are mirrored to stderr as well.
// The returned closer releases the log file handle.
func newLogger(logsDir string, verbose bool) (hclog.Logger, func()) {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}

	logPath := filepath.Join(logsDir, logFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		// Fall back to stderr only; the batch should not abort because the
		// log file could not be opened.
		logger := hclog.New(&hclog.LoggerOptions{
			Name:   "vdxconvert",
			Level:  level,
			Output: os.Stderr,
		})
		logger.Warn("cannot open log file, logging to stderr only", "path", logPath, "error", err)
		return logger, func() {}
	}

	var out io.Writer = file
	if verbose {
		out = io.MultiWriter(file, os.Stderr)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "vdxconvert",
		Level:  level,
		Output: out,
	})
	return logger, func() { _ = file.Close() }
}
