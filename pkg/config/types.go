package config

import "time"

const (
	// EnvPrefix is the prefix for environment overrides, e.g. MACSVC_TIMEOUT.
	EnvPrefix = "MACSVC"

	DefaultLaunchctlPath = "/bin/launchctl"
	DefaultConsoleDevice = "/dev/console"
	DefaultTimeout       = 30 * time.Second
	DefaultOutput        = "text"
)

// Config holds every tunable of the CLI. Keys match the YAML file and the
// flag names bound through viper.
type Config struct {
	SearchPaths   []string      `mapstructure:"search_paths" validate:"dive,required"`
	LaunchctlPath string        `mapstructure:"launchctl_path" validate:"required"`
	ConsoleDevice string        `mapstructure:"console_device" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Output        string        `mapstructure:"output" validate:"oneof=text json yaml table"`
	LogLevel      string        `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Debug         bool          `mapstructure:"debug"`
}
