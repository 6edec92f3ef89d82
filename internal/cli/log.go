package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger with short wall-clock timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a command step took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time as a structured field.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}
