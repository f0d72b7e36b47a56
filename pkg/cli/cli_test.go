package cli

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsToViper(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	AddStringFlag(cmd, "launchctl-path", "", "/bin/launchctl", "launchctl binary", false)
	cmd.PersistentFlags().String("out", "text", "output format")
	AddBoolFlag(cmd, "return-stdout", "", false, "return stdout")

	require.NoError(t, cmd.ParseFlags([]string{"--launchctl-path", "/opt/launchctl", "--return-stdout"}))

	v := viper.New()
	require.NoError(t, BindFlagsToViper(cmd, v))
	assert.Equal(t, "/opt/launchctl", v.GetString("launchctl_path"))
	assert.Equal(t, "text", v.GetString("out"))
	assert.True(t, v.GetBool("return_stdout"))
	assert.True(t, GetBool(cmd, "return-stdout"))
	assert.False(t, GetBool(cmd, "missing"))
	assert.Equal(t, "/opt/launchctl", GetStringOrEmpty(cmd, "launchctl-path"))
	assert.Empty(t, GetStringOrEmpty(cmd, "missing"))
}

func TestSetViperEnvPrefix(t *testing.T) {
	t.Setenv("MACSVC_LOG_LEVEL", "debug")
	v := viper.New()
	SetViperEnvPrefix(v, "MACSVC")
	assert.Equal(t, "debug", v.GetString("log_level"))
}

func TestPositionalArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "show <name>"}

	assert.NoError(t, ExactArgs(1)(cmd, []string{"a"}))
	err := ExactArgs(1)(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, 2, svc_err.GetExitCode(err))

	assert.NoError(t, RangeArgs(0, 1)(cmd, nil))
	assert.Error(t, RangeArgs(0, 1)(cmd, []string{"a", "b"}))
}
