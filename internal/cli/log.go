package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// redirectLogger points l at a rotating log file and returns the file so the
// caller can close it. Long-running commands (serve, browse) use this so log
// lines do not interleave with their terminal output.
func redirectLogger(l *log.Logger, s LogSettings) io.Closer {
	w := &lumberjack.Logger{
		Filename:   s.File,
		MaxSize:    s.MaxSizeMB,
		MaxBackups: s.MaxBackups,
		MaxAge:     s.MaxAgeDays,
		Compress:   s.Compress,
	}
	l.SetOutput(w)
	l.SetFormatter(log.LogfmtFormatter)
	return w
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Laid out 42 objects (12ms)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
