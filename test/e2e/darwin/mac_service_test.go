//go:build e2e && darwin

// E2E Integration Test: service module against the host launchd
// Installs a throwaway daemon in /Library/LaunchDaemons, so it needs root.
package darwin

import (
	"os"
	"os/exec"
	"testing"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/launchd"
	"github.com/CodeMonkeyCybersecurity/macsvc/test/e2e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serviceName = "com.salt.integration.test"
	servicePath = "/Library/LaunchDaemons/com.salt.integration.test.plist"
	missing     = "spongebob"
)

func requireHost(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"launchctl", "plutil"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found", bin)
		}
	}
	if os.Geteuid() != 0 {
		t.Skip("requires root to write /Library/LaunchDaemons")
	}
}

// setupService installs, enables and starts the test daemon and removes it
// when the test ends.
func setupService(t *testing.T, suite *e2e.E2ETestSuite) string {
	t.Helper()
	requireHost(t)

	err := launchd.WriteDescriptor(servicePath, &launchd.Descriptor{
		Label:            serviceName,
		ProgramArguments: []string{"/bin/sleep", "1000"},
		KeepAlive:        true,
		RunAtLoad:        true,
	})
	require.NoError(t, err)

	suite.Call("service.enable", serviceName)
	suite.Call("service.start", serviceName)

	t.Cleanup(func() {
		suite.Call("service.stop", serviceName)
		_ = os.Remove(servicePath)
	})
	return serviceName
}

func assertNotFound(t *testing.T, r *e2e.CommandResult) {
	t.Helper()
	r.AssertFails(t)
	r.AssertContains(t, "Service not found")
}

func TestService_Show(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-show")
	name := setupService(t, suite)

	result := suite.Call("service.show", name)
	result.AssertSuccess(t)
	var info struct {
		Plist map[string]interface{} `json:"plist"`
	}
	result.DecodeJSON(t, &info)
	assert.Equal(t, name, info.Plist["Label"])

	assertNotFound(t, suite.Call("service.show", missing))
}

func TestService_Launchctl(t *testing.T) {
	requireHost(t)
	suite := e2e.NewE2ETestSuite(t, "service-launchctl")

	result := suite.Call("service.launchctl", "error", "bootstrap", "64")
	result.AssertSuccess(t)
	assert.True(t, result.Truthy(t))

	result = suite.Call("service.launchctl", "error", "bootstrap", "64", "return_stdout=True")
	result.AssertSuccess(t)
	var out string
	result.DecodeJSON(t, &out)
	assert.Equal(t, "64: unknown error code", out)

	result = suite.Call("service.launchctl", "error", "bootstrap")
	result.AssertFails(t)
	result.AssertContains(t, "Failed to error service")
}

func TestService_List(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-list")
	name := setupService(t, suite)

	result := suite.Call("service.list")
	result.AssertSuccess(t)
	result.AssertContains(t, "PID")

	result = suite.Call("service.list", name)
	result.AssertSuccess(t)
	result.AssertContains(t, "{")

	assertNotFound(t, suite.Call("service.list", missing))
}

func TestService_Enable(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-enable")
	name := setupService(t, suite)

	result := suite.Call("service.enable", name)
	result.AssertSuccess(t)
	assert.True(t, result.Truthy(t))

	assertNotFound(t, suite.Call("service.enable", missing))
}

func TestService_Disable(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-disable")
	name := setupService(t, suite)

	result := suite.Call("service.disable", name)
	result.AssertSuccess(t)
	assert.True(t, result.Truthy(t))

	assertNotFound(t, suite.Call("service.disable", missing))
}

func TestService_Start(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-start")
	name := setupService(t, suite)

	result := suite.Call("service.start", name)
	result.AssertSuccess(t)
	assert.True(t, result.Truthy(t))

	assertNotFound(t, suite.Call("service.start", missing))
}

func TestService_Stop(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-stop")
	name := setupService(t, suite)

	result := suite.Call("service.stop", name)
	result.AssertSuccess(t)
	assert.True(t, result.Truthy(t))

	assertNotFound(t, suite.Call("service.stop", missing))
}

func TestService_Status(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-status")
	name := setupService(t, suite)

	assert.True(t, suite.Call("service.start", name).Truthy(t))
	assert.True(t, suite.Call("service.status", name).Truthy(t))

	assert.True(t, suite.Call("service.stop", name).Truthy(t))
	assert.False(t, suite.Call("service.status", name).Truthy(t))

	result := suite.Call("service.status", missing)
	result.AssertSuccess(t)
	assert.False(t, result.Truthy(t))
}

func TestService_Available(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-available")
	name := setupService(t, suite)

	assert.True(t, suite.Call("service.available", name).Truthy(t))
	assert.False(t, suite.Call("service.available", missing).Truthy(t))
}

func TestService_Missing(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-missing")
	name := setupService(t, suite)

	assert.False(t, suite.Call("service.missing", name).Truthy(t))
	assert.True(t, suite.Call("service.missing", missing).Truthy(t))
}

func TestService_Enabled(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-enabled")
	name := setupService(t, suite)

	assert.True(t, suite.Call("service.enabled", name).Truthy(t))
	assert.True(t, suite.Call("service.start", name).Truthy(t))

	assert.True(t, suite.Call("service.enabled", name).Truthy(t))
	assert.True(t, suite.Call("service.stop", name).Truthy(t))

	// launchd keeps no override for an unknown label, so it counts as enabled.
	assert.True(t, suite.Call("service.enabled", missing).Truthy(t))
}

func TestService_Disabled(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-disabled")
	name := setupService(t, suite)

	assert.True(t, suite.Call("service.start", name).Truthy(t))
	assert.False(t, suite.Call("service.disabled", name).Truthy(t))

	assert.True(t, suite.Call("service.disable", name).Truthy(t))
	assert.True(t, suite.Call("service.disabled", name).Truthy(t))
	assert.True(t, suite.Call("service.enable", name).Truthy(t))

	assertNotFound(t, suite.Call("service.stop", missing))
}

func TestService_GetAll(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-get-all")
	name := setupService(t, suite)

	result := suite.Call("service.get_all")
	result.AssertSuccess(t)
	var services []string
	result.DecodeJSON(t, &services)
	assert.Contains(t, services, name)
}

func TestService_GetEnabled(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-get-enabled")
	name := setupService(t, suite)

	result := suite.Call("service.get_enabled")
	result.AssertSuccess(t)
	var services []string
	result.DecodeJSON(t, &services)
	assert.Contains(t, services, name)
}

func TestService_Loaded(t *testing.T) {
	suite := e2e.NewE2ETestSuite(t, "service-loaded")
	name := setupService(t, suite)

	assert.True(t, suite.Call("service.loaded", name).Truthy(t))
}
