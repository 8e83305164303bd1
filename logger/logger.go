// Package logger provides the structured logging facade used by the quantum
// driver and the parmon command.
//
// Loggers take a message and an even list of key/value pairs:
//
//	log.Info("calibration loaded", "multiplier", m, "offset", o)
//
// The default implementation is backed by log/slog. It writes JSON records,
// or human readable console records when the ENV environment variable is set
// to "development".
package logger

// Level indicates the logging severity level.
type Level int8

// Logging levels.
const (
	// DebugLevel logs every device transaction.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs recoverable device problems like dropped connections.
	WarnLevel
	// ErrorLevel logs failures the caller has to deal with.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

var levelTexts = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

func (l Level) String() string {
	if s, ok := levelTexts[l]; ok {
		return s
	}
	return "unknown"
}

// ParseLevel returns the level named s and false if s is not a level name.
func ParseLevel(s string) (Level, bool) {
	for level, text := range levelTexts {
		if text == s {
			return level, true
		}
	}
	return InfoLevel, false
}

// Logger defines the logging interface.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel and exits the process.
	Fatal(msg string, keysAndValues ...any)
	// With returns a child logger carrying the given key/value pairs.
	// The parent logger is not affected.
	With(keysAndValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}
