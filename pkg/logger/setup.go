package logger

import (
	"os"
)

// SetupLogger initializes the default logger from CLI-level settings.
// Diagnostics go to stderr so progress lines on stdout stay readable.
func SetupLogger(logLevel string, logJSON, logSource bool) Logger {
	Init(&Config{
		Level:      LogLevel(logLevel),
		Output:     os.Stderr,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
	return defaultLogger
}
