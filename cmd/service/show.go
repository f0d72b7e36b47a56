// cmd/service/show.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

var ShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the descriptor of a service",
	Long:  "Prints the descriptor file name, path and the full plist dictionary.",
	Args:  cli.ExactArgs(1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		svc, err := NewManager().Show(rc.Ctx, args[0])
		if err != nil {
			return err
		}
		return Render(cmd, svc)
	}),
}
