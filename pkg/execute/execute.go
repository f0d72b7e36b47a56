// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// DefaultRunner is the process-wide runner used by Run and Capture.
var DefaultRunner Runner = ExecRunner{}

// Run implements Runner. A non-zero exit status is reported through
// Result.ExitCode, not as an error; the error is reserved for commands that
// could not be started or were killed by the timeout.
func (ExecRunner) Run(ctx context.Context, opts Options) (*Result, error) {
	name, args := commandLine(opts)
	cmdStr := buildCommandString(name, args...)

	logger := resolveLogger(opts.Logger)
	if ctx == nil {
		ctx = context.Background()
	}
	rc, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	rc, span := telemetry.Start(rc, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
		attribute.String("run_as", opts.RunAs),
	)

	if opts.DryRun || DefaultDryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return &Result{}, nil
	}

	var res *Result
	var err error
attempts:
	for i := 1; i <= max(1, opts.Retries); i++ {
		res, err = runOnce(rc, name, args, opts)
		if err == nil && res.ExitCode == 0 {
			logger.Debug("Execution succeeded",
				zap.String("command", cmdStr),
				zap.Duration("duration", res.Duration))
			break
		}

		fields := []zap.Field{zap.Int("attempt", i), zap.String("command", cmdStr)}
		if res != nil {
			fields = append(fields,
				zap.Int("exit_code", res.ExitCode),
				zap.String("summary", svc_err.ExtractSummary(res.Stderr+"\n"+res.Stdout, 2)))
		}
		if err != nil {
			span.RecordError(err)
			fields = append(fields, zap.Error(err))
		}
		logger.Debug("Execution did not succeed", fields...)

		if i < opts.Retries {
			select {
			case <-rc.Done():
				break attempts
			case <-time.After(opts.Delay):
			}
		}
	}

	if res != nil {
		span.SetAttributes(attribute.Int("exit_code", res.ExitCode))
	}
	if err != nil {
		return res, cerr.Wrapf(err, "running %s", cmdStr)
	}
	return res, nil
}

func runOnce(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			res.ExitCode = -1
			return res, cerr.Wrap(ctx.Err(), "command timed out")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, err
	}
	return res, nil
}

// Capture runs a command and returns the full Result.
func Capture(ctx context.Context, opts Options) (*Result, error) {
	return DefaultRunner.Run(ctx, opts)
}

// Run executes a command and returns trimmed stdout, failing on a non-zero exit.
func Run(ctx context.Context, opts Options) (string, error) {
	res, err := DefaultRunner.Run(ctx, opts)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		name, args := commandLine(opts)
		return res.Stdout, cerr.Newf("%s exited with status %d: %s",
			buildCommandString(name, args...), res.ExitCode,
			svc_err.ExtractSummary(res.Stderr+"\n"+res.Stdout, 2))
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RunSimple executes a command with minimal options.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{
		Command: cmd,
		Args:    args,
	})
	return err
}

// commandLine applies RunAs by prefixing sudo.
func commandLine(opts Options) (string, []string) {
	if opts.RunAs == "" {
		return opts.Command, opts.Args
	}
	args := append([]string{"-u", opts.RunAs, "--", opts.Command}, opts.Args...)
	return "sudo", args
}

func resolveLogger(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	if DefaultLogger != nil {
		return DefaultLogger
	}
	return zap.L()
}
