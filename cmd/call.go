/* cmd/call.go */

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/cmd/service"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/launchd"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CallCmd invokes a module function by name, the way a remote execution
// client would.
var CallCmd = &cobra.Command{
	Use:   "call <module.function> [args...] [key=value...]",
	Short: "Invoke a service module function by name",
	Long: `Invokes one of the service.* module functions with positional arguments.

Keyword arguments may be given as flags or as key=value pairs:
return_stdout, runas, sig and domain.`,
	Example: `  macsvc call service.show com.example.daemon --out json
  macsvc call service.launchctl error bootstrap 64 return_stdout=True
  macsvc call service.status 'com.example.*'
  macsvc call --list`,
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		if cli.GetBool(cmd, "list") {
			return service.Render(cmd, launchd.Functions())
		}
		if len(args) == 0 {
			return svc_err.NewValidationError("no function given", "usage: "+cmd.UseLine())
		}

		// ASSESS
		call := launchd.Call{
			ReturnStdout: cli.GetBool(cmd, "return-stdout"),
			RunAs:        cli.GetStringOrEmpty(cmd, "runas"),
			Sig:          cli.GetStringOrEmpty(cmd, "sig"),
			Domain:       cli.GetStringOrEmpty(cmd, "domain"),
		}
		if err := parseKwargs(args[1:], &call); err != nil {
			return err
		}

		rc.Log.Info("Calling module function",
			zap.String("function", args[0]),
			zap.Strings("args", call.Args))
		rc.Attributes["function"] = args[0]

		// INTERVENE
		result, err := service.NewManager().Dispatch(rc.Ctx, args[0], call)
		if err != nil {
			return err
		}

		// EVALUATE
		return service.Render(cmd, result)
	}),
}

func init() {
	cli.AddBoolFlag(CallCmd, "return-stdout", "", false, "Return launchctl's stdout instead of true")
	cli.AddStringFlag(CallCmd, "runas", "", "", "Run launchctl as this user", false)
	cli.AddStringFlag(CallCmd, "sig", "", "", "status: match processes by command line", false)
	cli.AddStringFlag(CallCmd, "domain", "", "", "enabled/disabled: launchd domain to query", false)
	cli.AddBoolFlag(CallCmd, "list", "", false, "List the available functions")
}

// parseKwargs splits positional arguments from key=value keyword arguments.
// Unknown keys stay positional so launchctl arguments containing '=' pass
// through untouched.
func parseKwargs(args []string, call *launchd.Call) error {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			call.Args = append(call.Args, arg)
			continue
		}
		switch key {
		case "return_stdout":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return svc_err.NewValidationError(fmt.Sprintf("return_stdout: %q is not a boolean", value))
			}
			call.ReturnStdout = b
		case "runas":
			call.RunAs = value
		case "sig":
			call.Sig = value
		case "domain":
			call.Domain = value
		default:
			call.Args = append(call.Args, arg)
		}
	}
	return nil
}
