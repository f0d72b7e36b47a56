// pkg/svc_io/context.go

package svc_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	RunID      string
	Command    string
	Attributes map[string]string

	cancel context.CancelFunc
}

// NewContext sets up tracing and a command-scoped logger. A zero timeout
// means no deadline beyond the parent's.
func NewContext(parent context.Context, cmdName string, timeout time.Duration) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}

	var cancel context.CancelFunc
	if timeout > 0 {
		parent, cancel = context.WithTimeout(parent, timeout)
	} else {
		parent, cancel = context.WithCancel(parent)
	}

	ctx, span := telemetry.Start(parent, cmdName)
	runID := uuid.New().String()

	log := logger.L().With(
		zap.String("command", cmdName),
		zap.String("run_id", runID),
	).Named(cmdName)

	return &RuntimeContext{
		Ctx:        ctx,
		Log:        log,
		Timestamp:  time.Now(),
		Span:       span,
		RunID:      runID,
		Command:    cmdName,
		Attributes: make(map[string]string),
		cancel:     cancel,
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, records telemetry attributes and releases the context.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.cancel()
	defer rc.Span.End()

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)
	success := err == nil

	switch {
	case success:
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	case svc_err.IsExpectedUserError(err):
		rc.Log.Warn("Command finished with user error", zap.Duration("duration", duration), zap.Error(err))
	default:
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(err))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("run_id", rc.RunID),
		attribute.String("error_type", classifyError(err)),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	if err != nil {
		rc.Span.RecordError(err)
	}
}

// LogRuntimeExecutionContext logs who is running the command; launchd
// domains depend on it.
func (rc *RuntimeContext) LogRuntimeExecutionContext() {
	currentUser, err := user.Current()
	if err != nil {
		rc.Log.Debug("Failed to get current user", zap.Error(err))
		return
	}
	rc.Log.Debug("User context",
		zap.String("username", currentUser.Username),
		zap.String("uid", currentUser.Uid),
		zap.Int("effective_uid", os.Geteuid()),
		zap.String("args", strings.Join(os.Args[1:], " ")),
	)
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if svc_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}
