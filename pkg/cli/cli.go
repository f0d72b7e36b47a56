// pkg/cli/cli.go
//
// Flag helpers shared by the macsvc commands. Flags are registered on cobra
// and bound to viper so config file, MACSVC_* environment and command line
// resolve through one lookup.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddStringFlag adds a string flag and optionally marks as required.
// Env/Config are handled by Viper if you call BindFlagsToViper.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string, required bool) {
	cmd.Flags().StringP(name, shorthand, def, help)
	if required {
		if err := cmd.MarkFlagRequired(name); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to mark flag %s as required: %v\n", name, err)
		}
	}
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
}

// BindFlagsToViper binds all local and persistent flags on a command to a
// Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.PersistentFlags().VisitAll(bind)
	return result
}

// SetViperEnvPrefix lets Viper read PREFIX_KEY environment variables.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// GetStringOrEmpty returns the string value or empty string if error.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// GetBool returns the bool flag value, false if the flag is unknown.
func GetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	return err == nil && val
}

// ExactArgs is cobra.ExactArgs reporting a usage error (exit 2).
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return svc_err.NewValidationError(
				fmt.Sprintf("%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args)),
				"usage: "+cmd.UseLine())
		}
		return nil
	}
}

// RangeArgs is cobra.RangeArgs reporting a usage error (exit 2).
func RangeArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return svc_err.NewValidationError(
				fmt.Sprintf("%s accepts between %d and %d arg(s), received %d", cmd.CommandPath(), min, max, len(args)),
				"usage: "+cmd.UseLine())
		}
		return nil
	}
}
