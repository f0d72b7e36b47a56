// cmd/service/launchctl.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

var LaunchctlCmd = &cobra.Command{
	Use:   "launchctl <sub-command> [args...]",
	Short: "Run a launchctl sub-command",
	Long: `Runs launchctl with launchd's failure rules: a non-zero exit code, or
"service is disabled" on stderr, is an error.

Prints true on success, or the command's stdout with --return-stdout.
Pass launchctl options such as -w after "--".`,
	Example: `  macsvc service launchctl error bootstrap 64 --return-stdout`,
	Args:    cobra.MinimumNArgs(1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		out, err := NewManager().Launchctl(rc.Ctx, args[0], args[1:], runAs)
		if err != nil {
			return err
		}
		if cli.GetBool(cmd, "return-stdout") {
			return Render(cmd, out)
		}
		return Render(cmd, true)
	}),
}

func init() {
	cli.AddBoolFlag(LaunchctlCmd, "return-stdout", "", false, "Print launchctl's stdout instead of true")
}
