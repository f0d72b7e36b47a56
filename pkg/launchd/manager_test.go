package launchd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLabel = "com.salt.integration.test"

func newTestManager(t *testing.T) (*Manager, *testutil.FakeRunner, *testutil.LaunchdTree) {
	t.Helper()
	tree := testutil.NewLaunchdTree(t)
	fake := testutil.NewFakeRunner()
	m := NewManager(Options{
		SearchPaths:   tree.SearchPaths(),
		LaunchctlPath: "launchctl",
		Runner:        fake,
	})
	m.consoleUser = func(string) (*ConsoleUser, error) {
		return &ConsoleUser{Name: "alice", UID: "501"}, nil
	}
	return m, fake, tree
}

func listOutput(lines ...string) string {
	out := "PID\tStatus\tLabel\n"
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func TestManagerShow(t *testing.T) {
	ctx := context.Background()
	m, _, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	svc, err := m.Show(ctx, testLabel)
	require.NoError(t, err)
	assert.Equal(t, testLabel, svc.Plist["Label"])
	assert.Equal(t, path, svc.FilePath)

	_, err = m.Show(ctx, "spongebob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Service not found")
}

func TestManagerList(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)
	tree.AddAgent(t, "com.example.agent", true)

	fake.OnStdout("launchctl list", listOutput("412\t0\t"+testLabel))
	fake.OnStdout("launchctl list "+testLabel, "{\n\t\"Label\" = \""+testLabel+"\";\n};\n")
	fake.OnStdout("launchctl list com.example.agent", "{\n\t\"Label\" = \"com.example.agent\";\n};\n")

	out, err := m.List(ctx, "", "")
	require.NoError(t, err)
	assert.Contains(t, out, "PID")

	out, err = m.List(ctx, testLabel, "")
	require.NoError(t, err)
	assert.Contains(t, out, "{")
	assert.Empty(t, fake.LastOptions().RunAs)

	_, err = m.List(ctx, "com.example.agent", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", fake.LastOptions().RunAs, "agents are listed as the console user")

	_, err = m.List(ctx, "spongebob", "")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestManagerEnableDisable(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)
	tree.AddAgent(t, "com.example.agent", true)

	fake.OnStdout("launchctl enable system/"+testLabel, "")
	fake.OnStdout("launchctl disable system/"+testLabel, "")
	fake.OnStdout("launchctl enable gui/501/com.example.agent", "")

	require.NoError(t, m.Enable(ctx, testLabel, ""))
	require.NoError(t, m.Disable(ctx, testLabel, ""))
	require.NoError(t, m.Enable(ctx, "com.example.agent", ""))

	assert.Equal(t, []string{
		"launchctl enable system/" + testLabel,
		"launchctl disable system/" + testLabel,
		"launchctl enable gui/501/com.example.agent",
	}, fake.Calls())

	assert.ErrorIs(t, m.Enable(ctx, "spongebob", ""), ErrServiceNotFound)
	assert.ErrorIs(t, m.Disable(ctx, "spongebob", ""), ErrServiceNotFound)
}

func TestManagerStartStop(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	fake.OnStdout("sw_vers -productVersion", "14.5\n")
	fake.OnStdout("launchctl bootstrap system "+path, "")
	fake.OnStdout("launchctl bootout system "+path, "")

	require.NoError(t, m.Start(ctx, testLabel, ""))
	require.NoError(t, m.Stop(ctx, testLabel, ""))

	assert.Equal(t, []string{
		"sw_vers -productVersion",
		"launchctl bootstrap system " + path,
		"launchctl bootout system " + path,
	}, fake.Calls())

	assert.ErrorIs(t, m.Start(ctx, "spongebob", ""), ErrServiceNotFound)
	assert.ErrorIs(t, m.Stop(ctx, "spongebob", ""), ErrServiceNotFound)
}

func TestManagerStartLegacy(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	fake.OnStdout("sw_vers -productVersion", "10.10.5")
	fake.OnStdout("launchctl load -w "+path, "")
	fake.OnStdout("launchctl unload -w "+path, "")

	require.NoError(t, m.Start(ctx, testLabel, ""))
	require.NoError(t, m.Stop(ctx, testLabel, ""))
	assert.Contains(t, fake.Calls(), "launchctl load -w "+path)
	assert.Contains(t, fake.Calls(), "launchctl unload -w "+path)
}

func TestManagerStartFailure(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	fake.On("launchctl bootstrap system "+path, execute.Result{
		Stderr:   "Bootstrap failed: 37: Operation already in progress",
		ExitCode: 37,
	})

	err := m.Start(ctx, testLabel, "")
	var lerr *LaunchctlError
	require.True(t, errors.As(err, &lerr))
	assert.Contains(t, err.Error(), "Failed to bootstrap service")
}

func TestManagerRestart(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	fake.OnStdout("launchctl list "+testLabel, "{};")
	fake.OnStdout("launchctl bootout system "+path, "")
	fake.OnStdout("launchctl bootstrap system "+path, "")

	require.NoError(t, m.Restart(ctx, testLabel, ""))
	calls := fake.Calls()
	assert.Equal(t, "launchctl bootstrap system "+path, calls[len(calls)-1])
	assert.Contains(t, calls, "launchctl bootout system "+path)
}

func TestManagerRestartNotLoaded(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	path := tree.AddDaemon(t, testLabel, true)

	fake.On("launchctl list "+testLabel, execute.Result{
		Stderr:   "Could not find service \"" + testLabel + "\" in domain for port",
		ExitCode: 113,
	})
	fake.OnStdout("launchctl bootstrap system "+path, "")

	require.NoError(t, m.Restart(ctx, testLabel, ""))
	assert.NotContains(t, fake.Calls(), "launchctl bootout system "+path)
}

func TestManagerStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("running job reports its pid", func(t *testing.T) {
		m, fake, tree := newTestManager(t)
		tree.AddDaemon(t, testLabel, true)
		fake.OnStdout("launchctl list", listOutput("412\t0\t"+testLabel, "-\t0\tcom.apple.other"))

		st, err := m.Status(ctx, testLabel, "", "")
		require.NoError(t, err)
		assert.Equal(t, "412", st)
	})

	t.Run("stopped keepalive job reports nothing", func(t *testing.T) {
		m, fake, tree := newTestManager(t)
		tree.AddDaemon(t, testLabel, true)
		fake.OnStdout("launchctl list", listOutput("-\t0\tcom.apple.other"))

		st, err := m.Status(ctx, testLabel, "", "")
		require.NoError(t, err)
		assert.Empty(t, st)
	})

	t.Run("idle enabled job reports loaded", func(t *testing.T) {
		m, fake, tree := newTestManager(t)
		tree.AddDaemon(t, "com.example.oneshot", false)
		fake.OnStdout("launchctl list", listOutput("-\t0\tcom.example.oneshot"))
		fake.OnStdout("launchctl print-disabled system", "disabled services = {\n}\n")

		st, err := m.Status(ctx, "com.example.oneshot", "", "")
		require.NoError(t, err)
		assert.Equal(t, "loaded", st)
	})

	t.Run("idle disabled job reports nothing", func(t *testing.T) {
		m, fake, tree := newTestManager(t)
		tree.AddDaemon(t, "com.example.oneshot", false)
		fake.OnStdout("launchctl list", listOutput())
		fake.OnStdout("launchctl print-disabled system",
			"disabled services = {\n\t\"com.example.oneshot\" => disabled\n}\n")

		st, err := m.Status(ctx, "com.example.oneshot", "", "")
		require.NoError(t, err)
		assert.Empty(t, st)
	})

	t.Run("unknown service", func(t *testing.T) {
		m, fake, _ := newTestManager(t)

		st, err := m.Status(ctx, "spongebob", "", "")
		require.NoError(t, err)
		assert.Empty(t, st)
		assert.Empty(t, fake.Calls())
	})

	t.Run("agent queried as console user", func(t *testing.T) {
		m, fake, tree := newTestManager(t)
		tree.AddAgent(t, "com.example.agent", true)
		fake.OnStdout("launchctl list", listOutput("77\t0\tcom.example.agent"))

		st, err := m.Status(ctx, "com.example.agent", "", "")
		require.NoError(t, err)
		assert.Equal(t, "77", st)
		assert.Equal(t, "alice", fake.LastOptions().RunAs)
	})

	t.Run("signature uses pgrep", func(t *testing.T) {
		m, fake, _ := newTestManager(t)
		fake.OnStdout("pgrep -f sleep 1000", "101\n202\n")

		st, err := m.Status(ctx, "anything", "sleep 1000", "")
		require.NoError(t, err)
		assert.Equal(t, "101\n202", st)
	})

	t.Run("signature without match", func(t *testing.T) {
		m, fake, _ := newTestManager(t)
		fake.On("pgrep -f nomatch", execute.Result{ExitCode: 1})

		st, err := m.Status(ctx, "anything", "nomatch", "")
		require.NoError(t, err)
		assert.Empty(t, st)
	})
}

func TestManagerStatusAll(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, "com.salt.one", true)
	tree.AddDaemon(t, "com.salt.two", true)
	fake.OnStdout("launchctl list", listOutput("10\t0\tcom.salt.one", "-\t0\tcom.apple.other"))

	got, err := m.StatusAll(ctx, "com.salt.*", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"com.salt.one": "10", "com.salt.two": ""}, got)

	assert.True(t, IsGlob("com.salt.*"))
	assert.True(t, IsGlob("com.salt.[ab]"))
	assert.False(t, IsGlob(testLabel))
}

func TestManagerStatusAllScansCatalogOnce(t *testing.T) {
	ctx := context.Background()
	scans := observeScans(t)
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)

	lines := []string{"7\t0\t" + testLabel}
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf("-\t0\tcom.apple.job%d", i))
	}
	fake.OnStdout("launchctl list", listOutput(lines...))

	got, err := m.StatusAll(ctx, "*", "")
	require.NoError(t, err)
	assert.Len(t, got, 51)
	assert.Equal(t, "7", got[testLabel])
	assert.LessOrEqual(t, scans(), 2)
}

func TestManagerAvailability(t *testing.T) {
	ctx := context.Background()
	m, _, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)

	assert.True(t, m.Available(ctx, testLabel))
	assert.False(t, m.Available(ctx, "spongebob"))
	assert.False(t, m.Missing(ctx, testLabel))
	assert.True(t, m.Missing(ctx, "spongebob"))
}

func TestManagerEnabledDisabled(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)
	tree.AddAgent(t, "com.example.agent", true)

	fake.OnStdout("launchctl print-disabled system",
		"disabled services = {\n\t\""+testLabel+"\" => enabled\n}\n")
	fake.OnStdout("launchctl print-disabled system",
		"disabled services = {\n\t\""+testLabel+"\" => disabled\n}\n")
	fake.OnStdout("launchctl print-disabled gui/501",
		"disabled services = {\n\t\"com.example.agent\" => true\n}\n")

	disabled, err := m.Disabled(ctx, testLabel, "", "")
	require.NoError(t, err)
	assert.False(t, disabled)

	enabled, err := m.Enabled(ctx, testLabel, "", "")
	require.NoError(t, err)
	assert.False(t, enabled, "second print-disabled reports the job disabled")

	enabled, err = m.Enabled(ctx, "com.example.agent", "", "")
	require.NoError(t, err)
	assert.False(t, enabled)

	// Unknown names fall back to the system domain and are never disabled.
	enabled, err = m.Enabled(ctx, "spongebob", "", "")
	require.NoError(t, err)
	assert.True(t, enabled)

	fake.OnStdout("launchctl print-disabled user/501", "disabled services = {\n}\n")
	disabled, err = m.Disabled(ctx, testLabel, "", "user/501")
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestManagerGetEnabledAndAll(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)
	tree.AddDaemon(t, "com.example.Idle", false)
	fake.OnStdout("launchctl list", listOutput(
		"412\t0\t"+testLabel,
		"-\t0\tcom.apple.other",
		"-\t0\tcom.apple.other",
	))

	enabled, err := m.GetEnabled(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.apple.other", testLabel}, enabled)

	all, err := m.GetAll(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.apple.other", "com.example.idle", testLabel}, all)
}

func TestManagerLoaded(t *testing.T) {
	ctx := context.Background()
	m, fake, tree := newTestManager(t)
	tree.AddDaemon(t, testLabel, true)
	tree.AddDaemon(t, "com.example.unloaded", true)

	fake.OnStdout("launchctl list "+testLabel, "{};")
	fake.On("launchctl list com.example.unloaded", execute.Result{ExitCode: 113})

	loaded, err := m.Loaded(ctx, testLabel, "")
	require.NoError(t, err)
	assert.True(t, loaded)

	loaded, err = m.Loaded(ctx, "com.example.unloaded", "")
	require.NoError(t, err)
	assert.False(t, loaded)

	loaded, err = m.Loaded(ctx, "spongebob", "")
	require.NoError(t, err)
	assert.False(t, loaded)
}
