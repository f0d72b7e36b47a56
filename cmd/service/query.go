// cmd/service/query.go

package service

import (
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
)

// queryCmds answer questions about services without changing them.
var queryCmds = []*cobra.Command{
	{
		Use:   "available <name>",
		Short: "Report whether a descriptor exists for the service",
		Args:  cli.ExactArgs(1),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			return Render(cmd, NewManager().Available(rc.Ctx, args[0]))
		}),
	},
	{
		Use:   "missing <name>",
		Short: "Report whether no descriptor exists for the service",
		Args:  cli.ExactArgs(1),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			return Render(cmd, NewManager().Missing(rc.Ctx, args[0]))
		}),
	},
	enabledCmd,
	disabledCmd,
	{
		Use:   "loaded <name>",
		Short: "Report whether launchd has the service loaded",
		Args:  cli.ExactArgs(1),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			loaded, err := NewManager().Loaded(rc.Ctx, args[0], runAs)
			if err != nil {
				return err
			}
			return Render(cmd, loaded)
		}),
	},
	{
		Use:     "get-all",
		Aliases: []string{"get_all"},
		Short:   "List loaded jobs and every discovered descriptor",
		Args:    cli.ExactArgs(0),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			all, err := NewManager().GetAll(rc.Ctx, runAs)
			if err != nil {
				return err
			}
			return Render(cmd, all)
		}),
	},
	{
		Use:     "get-enabled",
		Aliases: []string{"get_enabled"},
		Short:   "List the labels of loaded jobs",
		Args:    cli.ExactArgs(0),
		RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			enabled, err := NewManager().GetEnabled(rc.Ctx, runAs)
			if err != nil {
				return err
			}
			return Render(cmd, enabled)
		}),
	},
}

var enabledCmd = &cobra.Command{
	Use:   "enabled <name>",
	Short: "Report whether launchd does not mark the service disabled",
	Args:  cli.ExactArgs(1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		enabled, err := NewManager().Enabled(rc.Ctx, args[0], runAs, cli.GetStringOrEmpty(cmd, "domain"))
		if err != nil {
			return err
		}
		return Render(cmd, enabled)
	}),
}

var disabledCmd = &cobra.Command{
	Use:   "disabled <name>",
	Short: "Report whether launchd marks the service disabled",
	Args:  cli.ExactArgs(1),
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		disabled, err := NewManager().Disabled(rc.Ctx, args[0], runAs, cli.GetStringOrEmpty(cmd, "domain"))
		if err != nil {
			return err
		}
		return Render(cmd, disabled)
	}),
}

func init() {
	for _, c := range []*cobra.Command{enabledCmd, disabledCmd} {
		cli.AddStringFlag(c, "domain", "", "", "launchd domain to query (default: the service's own domain, or system)", false)
	}
}
