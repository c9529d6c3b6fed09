// SPDX-License-Identifier: MIT
package validate

// Log level names accepted in configuration, in increasing severity.
const (
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogLevels lists the accepted level names.
func LogLevels() []string {
	return []string{LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
}
