package launchd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchctlRun(t *testing.T) {
	ctx := context.Background()

	t.Run("returns trimmed stdout", func(t *testing.T) {
		fake := testutil.NewFakeRunner().OnStdout("launchctl error bootstrap 64", "64: unknown error code\n")
		l := &Launchctl{Path: "launchctl", Runner: fake, Timeout: time.Second}

		out, err := l.Run(ctx, "error", []string{"bootstrap", "64"}, CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, "64: unknown error code", out)
		assert.Equal(t, time.Second, fake.LastOptions().Timeout)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		fake := testutil.NewFakeRunner().On("launchctl error bootstrap", execute.Result{
			Stderr:   "Usage: launchctl error <type> <code>\n",
			ExitCode: 64,
		})
		l := &Launchctl{Path: "launchctl", Runner: fake}

		_, err := l.Run(ctx, "error", []string{"bootstrap"}, CallOptions{})
		require.Error(t, err)

		var lerr *LaunchctlError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, 64, lerr.RetCode)
		assert.Equal(t, "Failed to error service:\nstdout: \nstderr: Usage: launchctl error <type> <code>\nretcode: 64", err.Error())
		assert.Contains(t, err.Error(), "Failed to error service")
	})

	t.Run("disabled service reported on stderr", func(t *testing.T) {
		fake := testutil.NewFakeRunner().On("launchctl bootstrap system /x.plist", execute.Result{
			Stderr: "Bootstrap failed: 5: Input/output error\nService is disabled\n",
		})
		l := &Launchctl{Path: "launchctl", Runner: fake}

		_, err := l.Run(ctx, "bootstrap", []string{"system", "/x.plist"}, CallOptions{})
		var lerr *LaunchctlError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, 0, lerr.RetCode)
	})

	t.Run("run as user", func(t *testing.T) {
		fake := testutil.NewFakeRunner().OnStdout("launchctl list", "PID\tStatus\tLabel\n")
		l := &Launchctl{Path: "launchctl", Runner: fake}

		_, err := l.Run(ctx, "list", nil, CallOptions{RunAs: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "alice", fake.LastOptions().RunAs)
	})

	t.Run("runner failure is wrapped", func(t *testing.T) {
		l := &Launchctl{Path: "launchctl", Runner: execute.RunnerFunc(func(context.Context, execute.Options) (*execute.Result, error) {
			return nil, errors.New("fork failed")
		})}

		_, err := l.Run(ctx, "list", nil, CallOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "launchctl list")
		assert.Contains(t, err.Error(), "fork failed")
	})

	t.Run("missing binary", func(t *testing.T) {
		l := &Launchctl{Path: "/nonexistent/launchctl"}

		_, err := l.Run(ctx, "list", nil, CallOptions{})
		require.Error(t, err)
		assert.True(t, svc_err.IsCategory(err, svc_err.CategoryDependency))
	})
}
