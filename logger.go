package tintbar

// Logger defines the interface for application logging.
// The core uses structured logging with variadic key-value pairs so any
// structured logging library (slog, zap, logrus) can back it.
//
// Conditions the platform reports as critical (failed waits, provisioning
// failures, window construction failures) are logged through Error with a
// "severity" = "critical" pair, since critical is a reporting severity here,
// not a terminate-the-process level.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, args ...any)
}

// criticalArgs prefixes key-value pairs with the critical severity marker.
func criticalArgs(args ...any) []any {
	return append([]any{"severity", "critical"}, args...)
}

// NopLogger discards everything. It is the default until a real logger is
// wired in.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Debug(string, ...any) {}
