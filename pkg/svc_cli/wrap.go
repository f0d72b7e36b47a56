// pkg/svc_cli/wrap.go

package svc_cli

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunFunc is the signature of every macsvc command body.
type RunFunc func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error

// Wrap ensures panic recovery, telemetry and lifecycle logging
func Wrap(fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return WrapWithTimeout(0, fn)
}

// WrapWithTimeout is like Wrap but bounds the whole command by timeout.
func WrapWithTimeout(timeout time.Duration, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		rc := svc_io.NewContext(parent, cmd.Name(), timeout)
		defer rc.End(&err)

		// Panic recovery
		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		rc.LogRuntimeExecutionContext()
		rc.Attributes["command_path"] = cmd.CommandPath()

		err = fn(rc, cmd, args)
		if err != nil && !svc_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
