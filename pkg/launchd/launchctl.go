package launchd

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CallOptions tune a single launchctl invocation.
type CallOptions struct {
	// RunAs executes launchctl as this user; launch agents need the
	// console user to reach the gui domain.
	RunAs string
}

// Launchctl runs launchctl sub-commands.
type Launchctl struct {
	Path    string
	Runner  execute.Runner
	Timeout time.Duration
}

// Run executes `launchctl sub args...` and returns its stdout with trailing
// whitespace removed. A non-zero exit, or "service is disabled" on stderr,
// yields a *LaunchctlError.
func (l *Launchctl) Run(ctx context.Context, sub string, args []string, opts CallOptions) (string, error) {
	logger := otelzap.Ctx(ctx)

	ctx, span := telemetry.Start(ctx, "launchctl."+sub,
		attribute.String("sub_command", sub),
		attribute.StringSlice("args", args),
	)
	defer span.End()

	path := l.Path
	if path == "" {
		path = "launchctl"
	}
	runner := l.Runner
	if runner == nil {
		if _, err := exec.LookPath(path); err != nil {
			return "", svc_err.NewDependencyError("launchctl", sub, "macsvc only manages launchd on macOS")
		}
		runner = execute.DefaultRunner
	}

	logger.Debug("Running launchctl",
		zap.String("sub_command", sub),
		zap.Strings("args", args),
		zap.String("run_as", opts.RunAs))

	start := time.Now()
	res, err := runner.Run(ctx, execute.Options{
		Command: path,
		Args:    append([]string{sub}, args...),
		RunAs:   opts.RunAs,
		Timeout: l.Timeout,
	})
	failed := err != nil || res.ExitCode != 0 || stderrReportsFailure(res.Stderr)
	telemetry.Commands().Record(ctx, "launchctl", sub, time.Since(start), failed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", cerr.Wrapf(err, "launchctl %s", sub)
	}

	if failed {
		lerr := &LaunchctlError{
			SubCommand: sub,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			RetCode:    res.ExitCode,
		}
		span.RecordError(lerr)
		span.SetStatus(codes.Error, "launchctl "+sub+" failed")
		logger.Debug("launchctl reported failure",
			zap.String("sub_command", sub),
			zap.Int("retcode", res.ExitCode),
			zap.String("summary", svc_err.ExtractSummary(res.Stderr+"\n"+res.Stdout, 2)))
		return "", lerr
	}

	return strings.TrimRight(res.Stdout, " \t\r\n"), nil
}

// launchctl exits 0 for some failures and only complains on stderr.
func stderrReportsFailure(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "service is disabled")
}
