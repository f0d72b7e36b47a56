// cmd/service/service.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/config"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/launchd"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/output"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

// ServiceCmd is the top-level command for launchd service management.
var ServiceCmd = &cobra.Command{
	Use:   "service",
	Short: "Inspect and control launchd services",
	Long: `Service commands discover launchd job descriptors in the LaunchAgents and
LaunchDaemons directories and drive launchctl to enable, disable, start, stop
and query them.

Names are matched against job labels (case-insensitive) and then against the
descriptor file name without its .plist extension.`,
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

var (
	runAs string

	// commandRunner replaces the process runner in tests.
	commandRunner execute.Runner
)

func init() {
	ServiceCmd.PersistentFlags().StringVar(&runAs, "runas", "", "Run launchctl as this user")

	ServiceCmd.AddCommand(ShowCmd)
	ServiceCmd.AddCommand(LaunchctlCmd)
	ServiceCmd.AddCommand(ListCmd)
	for _, c := range stateCmds {
		ServiceCmd.AddCommand(c)
	}
	ServiceCmd.AddCommand(StatusCmd)
	for _, c := range queryCmds {
		ServiceCmd.AddCommand(c)
	}
	ServiceCmd.AddCommand(WatchCmd)
}

// NewManager builds a launchd manager from the active configuration.
func NewManager() *launchd.Manager {
	cfg := config.Current()
	return launchd.NewManager(launchd.Options{
		SearchPaths:   cfg.SearchPaths,
		LaunchctlPath: cfg.LaunchctlPath,
		ConsoleDevice: cfg.ConsoleDevice,
		Timeout:       cfg.Timeout,
		Runner:        commandRunner,
	})
}

// Render writes a result to the command's stdout in the configured format.
func Render(cmd *cobra.Command, data interface{}) error {
	format, err := output.ParseFormat(config.Current().Output)
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), format, data)
}
