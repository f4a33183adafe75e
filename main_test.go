package tintbar

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// logEntry is one captured log call.
type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }

// criticalCount returns how many error entries carry the critical severity
// marker.
func (l *recordingLogger) criticalCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, e := range l.entries {
		if e.level != "error" || len(e.args) < 2 {
			continue
		}
		if e.args[0] == "severity" && e.args[1] == "critical" {
			count++
		}
	}
	return count
}
