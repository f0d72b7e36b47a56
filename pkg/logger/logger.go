package logger

import (
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// L returns the global logger instance, initializing a console-only
// fallback when nothing has been configured yet.
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}
	InitFallback()
	return L()
}

// SetLogger installs l as the process logger for zap, otelzap and this package.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// InitFallback installs the console-only logger.
func InitFallback() {
	SetLogger(NewFallbackLogger())
}

// LogCommandExecution logs when a command is executed
func LogCommandExecution(cmdName string, args []string) {
	L().Info("Command executed", zap.String("command", cmdName), zap.Strings("args", args))
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}
