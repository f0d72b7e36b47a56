// cmd/service/status.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/launchd"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

var StatusCmd = &cobra.Command{
	Use:   "status <name|glob>",
	Short: "Show the PIDs of a service",
	Long: `Prints the newline separated PIDs launchd reports for the service.

An idle job that is enabled and not kept alive prints "loaded"; a stopped or
unknown service prints nothing. A glob such as 'com.example.*' prints a map of
every matching service. With --sig, the PIDs of processes whose command line
matches the pattern are printed instead.`,
	Args: cli.ExactArgs(1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		m := NewManager()
		sig := cli.GetStringOrEmpty(cmd, "sig")

		if sig == "" && launchd.IsGlob(args[0]) {
			all, err := m.StatusAll(rc.Ctx, args[0], runAs)
			if err != nil {
				return err
			}
			return Render(cmd, all)
		}

		st, err := m.Status(rc.Ctx, args[0], sig, runAs)
		if err != nil {
			return err
		}
		return Render(cmd, st)
	}),
}

func init() {
	cli.AddStringFlag(StatusCmd, "sig", "", "", "Match running processes by command line instead", false)
}
