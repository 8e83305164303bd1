package logger

import "os"

var defLogger Logger = NewSlog(os.Stderr, InfoLevel)

// GetLogger returns the default logger.
func GetLogger() Logger { return defLogger }

// SetLogger replaces the default logger.
func SetLogger(l Logger) {
	if l != nil {
		defLogger = l
	}
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) { defLogger.SetLevel(level) }

func Debug(msg string, keysAndValues ...any) { defLogger.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { defLogger.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { defLogger.Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { defLogger.Error(msg, keysAndValues...) }
func Fatal(msg string, keysAndValues ...any) { defLogger.Fatal(msg, keysAndValues...) }
