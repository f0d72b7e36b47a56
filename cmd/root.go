/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/config"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_cli"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_io"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	// Subcommands
	"github.com/CodeMonkeyCybersecurity/macsvc/cmd/service"
)

var (
	cfgFile string
	v       = viper.New()
)

// RootCmd is the base command for macsvc.
var RootCmd = &cobra.Command{
	Use:   "macsvc",
	Short: "Manage launchd services on macOS",
	Long: `macsvc discovers launchd job descriptors and drives launchctl to show,
enable, disable, start, stop and query services.

Every operation is available as 'macsvc service <op>' and, with the argument
conventions of a remote execution module, as 'macsvc call service.<op>'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE: svc_cli.Wrap(func(rc *svc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ~/.macsvc/config.yaml)")
	flags.StringP("out", "o", config.DefaultOutput, "Output format: text, json, yaml or table")
	flags.String("log-level", "", "Console log level (debug, info, warn, error)")
	flags.Bool("debug", false, "Debug logging and detailed error output")
	flags.String("launchctl-path", config.DefaultLaunchctlPath, "Path to the launchctl binary")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each external command")
	flags.StringSlice("search-path", nil, "launchd descriptor directory to scan (repeatable)")

	RootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return svc_err.NewValidationError(err.Error(), "see '"+cmd.CommandPath()+" --help'")
	})

	RootCmd.AddCommand(service.ServiceCmd)
	RootCmd.AddCommand(CallCmd)
}

// loadConfig resolves flags, MACSVC_* environment and the config file, then
// reconfigures logging for the invocation.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := cli.BindFlagsToViper(cmd.Root(), v); err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{"output": "out", "search_paths": "search-path"} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	config.SetCurrent(cfg)

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
		svc_err.SetDebugMode(true)
	}
	if level != "" {
		logger.InitializeWithFallback(level)
	}

	logger.L().Debug("Configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("config_file", v.ConfigFileUsed()),
		zap.Strings("search_paths", cfg.SearchPaths),
		zap.String("output", cfg.Output))
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	code := run(os.Args[1:])
	if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to flush logs: %v\n", err)
	}
	return code
}

func run(args []string) int {
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	if err == nil {
		return 0
	}
	svc_err.PrintError(RootCmd.ErrOrStderr(), logger.L(), err)
	return svc_err.GetExitCode(err)
}

// Syncing stderr fails on some terminals; there is nothing to flush there.
func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
