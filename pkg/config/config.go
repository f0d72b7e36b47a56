package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("search_paths", []string{})
	v.SetDefault("launchctl_path", DefaultLaunchctlPath)
	v.SetDefault("console_device", DefaultConsoleDevice)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("log_level", "")
	v.SetDefault("debug", false)
}

// DefaultConfigFile is ~/.macsvc/config.yaml.
func DefaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".macsvc", "config.yaml")
}

// Load reads the optional config file and MACSVC_* environment into v and
// returns the validated result. An explicitly named file must exist; the
// default location may be absent.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || os.IsNotExist(err) || isMissingFile(err)) {
				return nil, cerr.Wrapf(err, "reading config file %s", file)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, cerr.Wrap(err, "decoding configuration")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags with go-playground/validator.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return svc_err.WrapValidationError(svc_err.NewValidationError(
			"invalid configuration: "+err.Error(),
			"check "+DefaultConfigFile()+" and MACSVC_* environment variables",
		))
	}
	return nil
}

func isMissingFile(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && os.IsNotExist(pathErr.Err)
}
