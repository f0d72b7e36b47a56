// cmd/service/list.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "Show launchctl list output",
	Long: `Without a name, prints the PID/Status/Label table of loaded jobs. With a
name, prints launchd's dictionary for that job.`,
	Args: cli.RangeArgs(0, 1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		out, err := NewManager().List(rc.Ctx, name, runAs)
		if err != nil {
			return err
		}
		return Render(cmd, out)
	}),
}
