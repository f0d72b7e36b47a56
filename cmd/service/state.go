// cmd/service/state.go

package service

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/launchd"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type stateOp func(m *launchd.Manager, ctx context.Context, name, runAs string) error

// stateCmds change a job's enablement or load state and print true.
var stateCmds = []*cobra.Command{
	newStateCmd("enable", "Enable a service in its launchd domain", (*launchd.Manager).Enable),
	newStateCmd("disable", "Disable a service in its launchd domain", (*launchd.Manager).Disable),
	newStateCmd("start", "Bootstrap a service into its launchd domain", (*launchd.Manager).Start),
	newStateCmd("stop", "Boot a service out of its launchd domain", (*launchd.Manager).Stop),
	newStateCmd("restart", "Stop a loaded service and start it again", (*launchd.Manager).Restart),
}

func newStateCmd(use, short string, op stateOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cli.ExactArgs(1),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			rc.Log.Info("Changing service state",
				zap.String("operation", use),
				zap.String("service", args[0]))

			if err := op(NewManager(), rc.Ctx, args[0], runAs); err != nil {
				return err
			}
			return Render(cmd, true)
		}),
	}
}
