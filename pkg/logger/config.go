/* pkg/logger/config.go */

package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultConsoleLevel keeps stderr quiet so command results on stdout stay readable.
const DefaultConsoleLevel = zapcore.WarnLevel

// ParseLogLevel maps LOG_LEVEL style names to zap levels.
// Unknown or empty values yield fallback.
func ParseLogLevel(level string, fallback zapcore.Level) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	case "DPANIC":
		return zapcore.DPanicLevel
	default:
		return fallback
	}
}
