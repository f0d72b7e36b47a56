/* pkg/logger/fallback.go */

package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFallbackLogger logs to stderr only.
func NewFallbackLogger() *zap.Logger {
	cfg := DefaultConsoleEncoderConfig()

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stderr),
		ParseLogLevel(os.Getenv("LOG_LEVEL"), DefaultConsoleLevel),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitializeWithFallback tees console output on stderr with a JSON log file.
// When no log file can be opened it degrades to the console logger.
// consoleLevel overrides LOG_LEVEL when non-empty.
func InitializeWithFallback(consoleLevel string) {
	level := ParseLogLevel(os.Getenv("LOG_LEVEL"), DefaultConsoleLevel)
	if consoleLevel != "" {
		level = ParseLogLevel(consoleLevel, level)
	}

	path, err := FindWritableLogPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: no writable log path found, logging to console only")
		SetLogger(zap.New(
			zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), level),
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel),
		))
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	writer, err := GetLogFileWriter(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not write to log file, falling back to stderr:", err)
		writer = zapcore.Lock(os.Stderr)
	}

	fileLevel := zapcore.InfoLevel
	if level < fileLevel {
		fileLevel = level
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), writer, fileLevel),
	)

	SetLogger(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
	L().Debug("Logger initialized",
		zap.String("console_level", level.String()),
		zap.String("log_path", path),
	)
}

func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = "C"
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
